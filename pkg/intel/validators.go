// Package intel extracts and validates scam intelligence from message text.
// All patterns are compiled once at package init and shared across requests.
//
// Design principles:
// - COMPILE ONCE: regexes compiled at init, not per-message
// - VALIDATE EVERYTHING: pattern hits pass through format validators before
//   they count as evidence; malformed candidates are silently dropped
// - NEVER FAIL: extraction over empty or garbage input yields empty results
package intel

import (
	"regexp"
	"strings"
)

// upiProviders is the closed set of known UPI handle suffixes. An @handle
// with an unknown provider is rejected even when syntactically well formed.
var upiProviders = map[string]bool{
	"paytm":       true,
	"ybl":         true, // PhonePe
	"axisbank":    true,
	"oksbi":       true, // SBI
	"okicici":     true, // ICICI
	"okhdfcbank":  true, // HDFC
	"icici":       true,
	"sbi":         true,
	"hdfc":        true,
	"airtel":      true,
	"freecharge":  true,
	"jiomoney":    true,
	"mobikwik":    true,
	"apl":         true, // Amazon Pay
	"amazonpay":   true,
	"ibl":         true, // ICICI Bank
	"axl":         true, // Axis Bank
	"upi":         true,
	"gpay":        true,
	"pingpay":     true,
	"abfspay":     true,
	"barodampay":  true,
	"centralbank": true,
	"cnrb":        true,
	"csbpay":      true,
	"dbs":         true,
	"federal":     true,
	"finobank":    true,
	"idfcbank":    true,
	"indus":       true,
	"kotak":       true,
	"pnb":         true,
	"rbl":         true,
	"sib":         true,
	"ubi":         true,
	"united":      true,
	"utbi":        true,
	"vijb":        true,
	"yesbankltd":  true,
}

// urlShorteners are hosts accepted as links without a scheme or www prefix.
var urlShorteners = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd",
	"buff.ly", "j.mp", "tr.im",
}

var (
	allDigitsRe   = regexp.MustCompile(`^\d+$`)
	upiUsernameRe = regexp.MustCompile(`^[\w.\-]+$`)
	urlFormRe     = regexp.MustCompile(`^https?://[^\s<>"']+\.[^\s<>"']+$`)
)

// Ascending/descending digit cycles used to reject purely sequential account
// numbers. A candidate is sequential only if the ENTIRE string is a
// contiguous substring of one of these.
const (
	ascendingDigits  = "12345678901234567890"
	descendingDigits = "09876543210987654321"
)

// distinctDigits counts unique characters in an all-digit string.
func distinctDigits(s string) int {
	var seen [10]bool
	n := 0
	for _, c := range s {
		d := c - '0'
		if d > 9 {
			continue
		}
		if !seen[d] {
			seen[d] = true
			n++
		}
	}
	return n
}

// IsValidBankAccount reports whether number is a plausible Indian bank
// account. Rules: 9-18 digits, at least 3 distinct digits, not a purely
// sequential run, not a date-like DDMMYYYY string.
func IsValidBankAccount(number string) bool {
	if !allDigitsRe.MatchString(number) {
		return false
	}
	if len(number) < 9 || len(number) > 18 {
		return false
	}
	if distinctDigits(number) < 3 {
		return false
	}
	if strings.Contains(ascendingDigits, number) || strings.Contains(descendingDigits, number) {
		return false
	}
	// DDMMYYYY dates slip through digit-run patterns; never account numbers.
	if len(number) == 8 {
		day := (int(number[0]-'0') * 10) + int(number[1]-'0')
		month := (int(number[2]-'0') * 10) + int(number[3]-'0')
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			return false
		}
	}
	return true
}

// IsValidUPIID reports whether upiID has the form username@provider with a
// username of at least 3 chars ([A-Za-z0-9._-]) and a known provider.
// Comparison is case-insensitive.
func IsValidUPIID(upiID string) bool {
	if upiID == "" || !strings.Contains(upiID, "@") {
		return false
	}
	parts := strings.Split(strings.ToLower(upiID), "@")
	if len(parts) != 2 {
		return false
	}
	username, provider := parts[0], parts[1]
	if len(username) < 3 {
		return false
	}
	if !upiUsernameRe.MatchString(username) {
		return false
	}
	return upiProviders[provider]
}

// IsValidPhoneNumber reports whether phone is a plausible Indian mobile
// number: 10 digits after stripping an optional +91/91 country code, first
// digit 6-9, at least 3 distinct digits.
func IsValidPhoneNumber(phone string) bool {
	var b strings.Builder
	for _, c := range phone {
		switch c {
		case ' ', '-', '(', ')', '+':
			continue
		default:
			b.WriteRune(c)
		}
	}
	clean := b.String()

	if strings.HasPrefix(clean, "91") && len(clean) == 12 {
		clean = clean[2:]
	} else if strings.HasPrefix(clean, "0") && len(clean) == 11 {
		clean = clean[1:]
	}
	if len(clean) != 10 {
		return false
	}
	if !allDigitsRe.MatchString(clean) {
		return false
	}
	if clean[0] < '6' || clean[0] > '9' {
		return false
	}
	return distinctDigits(clean) >= 3
}

// IsValidURL reports whether url is a well-formed link. Scheme-qualified and
// www-qualified URLs are accepted, as are paths on known shortener hosts.
// Malformed input returns false, never an error.
func IsValidURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}

	test := url
	if !strings.HasPrefix(test, "http://") && !strings.HasPrefix(test, "https://") {
		// Covers both www. prefixes and bare shortener links like bit.ly/xyz
		test = "http://" + test
	}
	return urlFormRe.MatchString(test)
}

// CleanBankAccount strips spaces and hyphens from a raw candidate and
// validates it. Returns "" if the cleaned string is not a valid account.
func CleanBankAccount(raw string) string {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(raw)
	if IsValidBankAccount(clean) {
		return clean
	}
	return ""
}

// CleanPhone normalizes a raw candidate to canonical +91XXXXXXXXXX form.
// Returns "" if the candidate does not reduce to a valid Indian mobile.
func CleanPhone(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		if (c >= '0' && c <= '9') || c == '+' {
			b.WriteRune(c)
		}
	}
	clean := b.String()

	var digits string
	switch {
	case strings.HasPrefix(clean, "+91"):
		digits = clean[3:]
	case strings.HasPrefix(clean, "91") && len(clean) == 12:
		digits = clean[2:]
	case strings.HasPrefix(clean, "0") && len(clean) == 11:
		digits = clean[1:]
	default:
		digits = clean
	}

	if len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9' && allDigitsRe.MatchString(digits) {
		return "+91" + digits
	}
	return ""
}
