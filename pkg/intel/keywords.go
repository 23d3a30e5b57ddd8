package intel

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultScamKeywords is the built-in scam-indicator phrase list. Multi-word
// phrases match as contiguous substrings, case-insensitively. The list can be
// replaced via a YAML file (see LoadKeywords) without a rebuild.
var defaultScamKeywords = []string{
	"urgent", "immediately", "blocked", "suspended", "verify",
	"otp", "password", "cvv", "expire", "limited time", "act now",
	"account closed", "confirm identity", "click here", "update kyc",
	"kyc update", "link expire", "bank notice", "rbi", "security alert",
	"unusual activity", "unauthorized", "refund", "lottery", "prize",
	"winner", "claim now", "last chance", "final notice", "warning",
	"action required", "pan card", "aadhaar", "debit card", "credit card",
	"pin", "atm", "transfer", "send money", "pay now", "payment failed",
	"transaction failed", "account frozen", "legal action", "police",
	"arrest", "case filed", "court", "fine", "penalty",
}

// keywordsConfig mirrors the YAML override structure.
type keywordsConfig struct {
	ScamKeywords []string `yaml:"scam_keywords"`
}

// LoadKeywords returns the scam keyword list, preferring the YAML file at
// path when it exists and parses. Any failure falls back to the built-in
// list so the extractor always has a working set.
func LoadKeywords(path string) []string {
	if path == "" {
		return defaultScamKeywords
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[intel] keyword file %s unreadable (%v), using built-in list", path, err)
		return defaultScamKeywords
	}

	var cfg keywordsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("[intel] keyword file %s unparsable (%v), using built-in list", path, err)
		return defaultScamKeywords
	}

	if len(cfg.ScamKeywords) == 0 {
		return defaultScamKeywords
	}
	return cfg.ScamKeywords
}
