package intel

import "encoding/json"

// Evidence is the fixed five-category intelligence record. The categories
// never vary: a zero Evidence is a valid "nothing found" result, and merge
// operations only ever grow the per-category sets.
type Evidence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UpiIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// categories returns pointers to the five sets in a stable order.
func (e *Evidence) categories() []*[]string {
	return []*[]string{
		&e.BankAccounts,
		&e.UpiIDs,
		&e.PhishingLinks,
		&e.PhoneNumbers,
		&e.SuspiciousKeywords,
	}
}

// MarshalJSON renders empty categories as [] rather than null: consumers of
// the wire format expect all five arrays to be present on every payload.
func (e Evidence) MarshalJSON() ([]byte, error) {
	type wire Evidence
	w := wire(e)
	for _, c := range (*Evidence)(&w).categories() {
		if *c == nil {
			*c = []string{}
		}
	}
	return json.Marshal(w)
}

// Merge unions other into e per category, preserving e's existing order and
// appending unseen items in other's order. Reports whether anything new was
// added. Re-merging identical evidence is a no-op.
func (e *Evidence) Merge(other Evidence) bool {
	added := false
	src := other.categories()
	for i, dst := range e.categories() {
		seen := make(map[string]bool, len(*dst))
		for _, v := range *dst {
			seen[v] = true
		}
		for _, v := range *src[i] {
			if !seen[v] {
				*dst = append(*dst, v)
				seen[v] = true
				added = true
			}
		}
	}
	return added
}

// Clone returns a deep copy. Snapshots handed to callers must not alias the
// store's backing slices.
func (e Evidence) Clone() Evidence {
	c := Evidence{}
	src := e.categories()
	for i, dst := range c.categories() {
		if len(*src[i]) > 0 {
			*dst = append([]string(nil), *src[i]...)
		}
	}
	return c
}

// TypesCount returns how many of the five categories are non-empty.
func (e Evidence) TypesCount() int {
	n := 0
	for _, c := range e.categories() {
		if len(*c) > 0 {
			n++
		}
	}
	return n
}

// TotalItems returns the item count across all categories.
func (e Evidence) TotalItems() int {
	n := 0
	for _, c := range e.categories() {
		n += len(*c)
	}
	return n
}

// HighValueCount counts items in the four high-value categories, which is
// every category except suspicious keywords.
func (e Evidence) HighValueCount() int {
	return len(e.BankAccounts) + len(e.UpiIDs) + len(e.PhishingLinks) + len(e.PhoneNumbers)
}
