package intel

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func newTestExtractor() *Extractor {
	return NewExtractor(nil)
}

func TestExtractAllScamMessage(t *testing.T) {
	x := newTestExtractor()

	result := x.ExtractAll("Pay to scammer@paytm, call +919876543210. Urgent!")

	if !reflect.DeepEqual(result.UpiIDs, []string{"scammer@paytm"}) {
		t.Errorf("upiIds = %v, want [scammer@paytm]", result.UpiIDs)
	}
	if !reflect.DeepEqual(result.PhoneNumbers, []string{"+919876543210"}) {
		t.Errorf("phoneNumbers = %v, want [+919876543210]", result.PhoneNumbers)
	}
	if !reflect.DeepEqual(result.SuspiciousKeywords, []string{"urgent"}) {
		t.Errorf("suspiciousKeywords = %v, want [urgent]", result.SuspiciousKeywords)
	}
	if len(result.BankAccounts) != 0 {
		t.Errorf("bankAccounts = %v, want empty (phone digits must not be misread)", result.BankAccounts)
	}
	if len(result.PhishingLinks) != 0 {
		t.Errorf("phishingLinks = %v, want empty", result.PhishingLinks)
	}
}

func TestExtractAllKitchenSink(t *testing.T) {
	x := newTestExtractor()

	text := `URGENT: Your account 9876543210123456 is blocked!
Pay Rs.1000 to verify@paytm to unblock.
Click http://fake-bank.com or call +91 9988776655.`

	result := x.ExtractAll(text)

	if len(result.BankAccounts) == 0 || result.BankAccounts[0] != "9876543210123456" {
		t.Errorf("bankAccounts = %v, want [9876543210123456]", result.BankAccounts)
	}
	if len(result.UpiIDs) != 1 || result.UpiIDs[0] != "verify@paytm" {
		t.Errorf("upiIds = %v, want [verify@paytm]", result.UpiIDs)
	}
	if len(result.PhishingLinks) != 1 || result.PhishingLinks[0] != "http://fake-bank.com" {
		t.Errorf("phishingLinks = %v, want [http://fake-bank.com]", result.PhishingLinks)
	}
	if len(result.PhoneNumbers) != 1 || result.PhoneNumbers[0] != "+919988776655" {
		t.Errorf("phoneNumbers = %v, want [+919988776655]", result.PhoneNumbers)
	}

	kw := make(map[string]bool)
	for _, k := range result.SuspiciousKeywords {
		kw[k] = true
	}
	if !kw["urgent"] || !kw["blocked"] {
		t.Errorf("suspiciousKeywords = %v, want urgent and blocked present", result.SuspiciousKeywords)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	x := newTestExtractor()

	result := x.ExtractAll("")
	if result.TotalItems() != 0 {
		t.Errorf("ExtractAll(\"\") = %+v, want all categories empty", result)
	}
}

func TestExtractBankAccountsWithSeparators(t *testing.T) {
	x := newTestExtractor()

	got := x.ExtractBankAccounts("Account number is 5030-4123-4567")
	if !reflect.DeepEqual(got, []string{"503041234567"}) {
		t.Errorf("ExtractBankAccounts = %v, want [503041234567]", got)
	}
}

func TestExtractUPIIDsCaseAndDedup(t *testing.T) {
	x := newTestExtractor()

	got := x.ExtractUPIIDs("Pay SCAMMER@PAYTM or scammer@paytm or fraud@ybl now")
	if !reflect.DeepEqual(got, []string{"scammer@paytm", "fraud@ybl"}) {
		t.Errorf("ExtractUPIIDs = %v, want [scammer@paytm fraud@ybl]", got)
	}
}

func TestExtractUPIIDsRejectsUnknownProvider(t *testing.T) {
	x := newTestExtractor()

	if got := x.ExtractUPIIDs("send to user@unknownbank please"); len(got) != 0 {
		t.Errorf("ExtractUPIIDs unknown provider = %v, want empty", got)
	}
}

func TestExtractPhoneNumbersNormalization(t *testing.T) {
	x := newTestExtractor()

	testCases := []struct {
		name string
		text string
	}{
		{"plus prefix with space", "call +91 9876543210"},
		{"bare country code", "call 91-9876543210"},
		{"trunk zero", "call 09876543210"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := x.ExtractPhoneNumbers(tc.text)
			if !reflect.DeepEqual(got, []string{"+919876543210"}) {
				t.Errorf("ExtractPhoneNumbers(%q) = %v, want [+919876543210]", tc.text, got)
			}
		})
	}
}

func TestExtractURLsStripTrailingPunctuation(t *testing.T) {
	x := newTestExtractor()

	got := x.ExtractURLs("Visit http://fake-bank.com/verify. Also www.phish.example, and bit.ly/abc123!")
	want := []string{"http://fake-bank.com/verify", "www.phish.example", "bit.ly/abc123"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractURLs = %v, want %v", got, want)
	}
}

func TestExtractKeywordsMultiWordPhrases(t *testing.T) {
	x := newTestExtractor()

	got := x.ExtractKeywords("Your KYC UPDATE is pending, act now or face legal action")
	kw := make(map[string]bool)
	for _, k := range got {
		kw[k] = true
	}
	for _, want := range []string{"kyc update", "act now", "legal action"} {
		if !kw[want] {
			t.Errorf("ExtractKeywords missing %q in %v", want, got)
		}
	}
}

func TestEvidenceMergeMonotonic(t *testing.T) {
	e := Evidence{UpiIDs: []string{"a@paytm"}}

	added := e.Merge(Evidence{UpiIDs: []string{"a@paytm", "b@ybl"}, PhoneNumbers: []string{"+919876543210"}})
	if !added {
		t.Fatal("Merge with new items should report added")
	}
	if !reflect.DeepEqual(e.UpiIDs, []string{"a@paytm", "b@ybl"}) {
		t.Errorf("UpiIDs after merge = %v", e.UpiIDs)
	}

	// Re-merging identical evidence must be a no-op.
	if e.Merge(Evidence{UpiIDs: []string{"a@paytm", "b@ybl"}, PhoneNumbers: []string{"+919876543210"}}) {
		t.Error("re-merging identical evidence reported added")
	}
	if e.TotalItems() != 3 {
		t.Errorf("TotalItems = %d, want 3", e.TotalItems())
	}
}

func TestEvidenceCounts(t *testing.T) {
	e := Evidence{
		BankAccounts:       []string{"112233445566"},
		UpiIDs:             []string{"a@paytm", "b@ybl"},
		SuspiciousKeywords: []string{"urgent"},
	}

	if got := e.TypesCount(); got != 3 {
		t.Errorf("TypesCount = %d, want 3", got)
	}
	if got := e.TotalItems(); got != 4 {
		t.Errorf("TotalItems = %d, want 4", got)
	}
	if got := e.HighValueCount(); got != 3 {
		t.Errorf("HighValueCount = %d, want 3", got)
	}
}

func TestEvidenceCloneIsDeep(t *testing.T) {
	e := Evidence{UpiIDs: []string{"a@paytm"}}
	c := e.Clone()
	c.UpiIDs[0] = "mutated@ybl"
	if e.UpiIDs[0] != "a@paytm" {
		t.Error("Clone shares backing storage with the original")
	}
}

func TestEvidenceMarshalEmptyCategoriesAsArrays(t *testing.T) {
	x := newTestExtractor()

	got, err := json.Marshal(x.ExtractAll("call +919876543210 now"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// All five categories are present on every payload, empty or not.
	want := `{"bankAccounts":[],"upiIds":[],"phishingLinks":[],"phoneNumbers":["+919876543210"],"suspiciousKeywords":[]}`
	if string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	zero, err := json.Marshal(Evidence{})
	if err != nil {
		t.Fatalf("Marshal zero value failed: %v", err)
	}
	if strings.Contains(string(zero), "null") {
		t.Errorf("zero Evidence marshaled null categories: %s", zero)
	}
}
