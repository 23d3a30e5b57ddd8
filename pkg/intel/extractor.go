package intel

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Candidate patterns, compiled once. Each pattern over-matches on purpose;
// the validators decide what survives.
var (
	// Digit runs grouped 4+4+up-to-10 with optional space/hyphen separators.
	bankAccountRe = regexp.MustCompile(`\b(\d{4}[\s\-]?\d{4}[\s\-]?\d{1,10})\b`)

	// username@provider against the common provider tokens. The full closed
	// set lives in the validator; the pattern carries the high-traffic subset.
	upiIDRe = regexp.MustCompile(`(?i)\b([\w.\-]+@(?:paytm|ybl|axisbank|oksbi|okicici|okhdfcbank|` +
		`icici|sbi|hdfc|airtel|freecharge|jiomoney|mobikwik|apl|` +
		`amazonpay|ibl|axl|upi|gpay|pingpay|kotak|pnb|federal|` +
		`indus|rbl|yesbankltd|dbs|idfcbank))\b`)

	// Indian mobiles with optional +91 or trunk 0.
	phoneRe = regexp.MustCompile(`(\+91[\s\-]?[6-9]\d{9}|\b0?[6-9]\d{9})\b`)

	// Scheme- or www-qualified URLs, plus bare shortener links.
	urlRe = regexp.MustCompile(`(?i)((?:https?://|www\.)[^\s<>"']+|` +
		`(?:bit\.ly|tinyurl\.com|goo\.gl|t\.co|ow\.ly|is\.gd|` +
		`buff\.ly|j\.mp|tr\.im)/[^\s<>"']+)`)
)

// Extractor scans message text for the five evidence categories. It is
// stateless after construction and safe for concurrent use.
type Extractor struct {
	keywords []string
	folded   []string // case-folded keyword list, parallel to keywords
}

// NewExtractor builds an extractor over the given keyword list. Pass
// LoadKeywords(...) or nil for the built-in set.
func NewExtractor(keywords []string) *Extractor {
	if len(keywords) == 0 {
		keywords = defaultScamKeywords
	}
	folder := cases.Fold()
	folded := make([]string, len(keywords))
	for i, k := range keywords {
		folded[i] = folder.String(k)
	}
	return &Extractor{keywords: keywords, folded: folded}
}

// ExtractAll scans text for every category. Empty input yields an empty
// Evidence, never an error.
func (x *Extractor) ExtractAll(text string) Evidence {
	if text == "" {
		return Evidence{}
	}
	return Evidence{
		BankAccounts:       x.ExtractBankAccounts(text),
		UpiIDs:             x.ExtractUPIIDs(text),
		PhishingLinks:      x.ExtractURLs(text),
		PhoneNumbers:       x.ExtractPhoneNumbers(text),
		SuspiciousKeywords: x.ExtractKeywords(text),
	}
}

// ExtractBankAccounts returns validated account numbers with separators
// stripped, deduplicated in first-seen order.
func (x *Extractor) ExtractBankAccounts(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range bankAccountRe.FindAllStringSubmatch(text, -1) {
		clean := CleanBankAccount(m[1])
		if clean != "" && CleanPhone(clean) != "" {
			// Digit runs that normalize to a valid Indian mobile belong to
			// the phone category, not accounts.
			continue
		}
		if clean != "" && !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}
	return out
}

// ExtractUPIIDs returns validated UPI handles, lower-cased and deduplicated.
func (x *Extractor) ExtractUPIIDs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range upiIDRe.FindAllStringSubmatch(text, -1) {
		id := strings.ToLower(m[1])
		if IsValidUPIID(id) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ExtractPhoneNumbers returns phone numbers normalized to +91XXXXXXXXXX.
// Candidates that do not normalize are dropped silently.
func (x *Extractor) ExtractPhoneNumbers(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range phoneRe.FindAllStringSubmatch(text, -1) {
		clean := CleanPhone(m[1])
		if clean != "" && !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}
	return out
}

// ExtractURLs returns validated links with trailing sentence punctuation
// stripped.
func (x *Extractor) ExtractURLs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range urlRe.FindAllStringSubmatch(text, -1) {
		clean := strings.TrimRight(m[1], ".,;:!?)")
		if IsValidURL(clean) && !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}
	return out
}

// ExtractKeywords returns the scam-indicator phrases contained in text.
// Matching is a case-folded substring test so multi-word phrases match as
// contiguous runs.
func (x *Extractor) ExtractKeywords(text string) []string {
	foldedText := cases.Fold().String(text)
	var out []string
	seen := make(map[string]bool)
	for i, fk := range x.folded {
		if strings.Contains(foldedText, fk) && !seen[x.keywords[i]] {
			seen[x.keywords[i]] = true
			out = append(out, x.keywords[i])
		}
	}
	return out
}
