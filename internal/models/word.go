package models

import "time"

// WordEntry is one imported dictionary row. Words may repeat; id order is
// import order.
type WordEntry struct {
	ID         int64
	Word       string
	Definition string
	CreatedAt  time.Time
}

// WordPair is a validated record ready to be inserted
type WordPair struct {
	Word       string
	Definition string
}

// Stats summarizes the store for the stats endpoint
type Stats struct {
	TotalWords    int `json:"totalWords"`
	TotalSearches int `json:"totalSearches"`
	TodaySearches int `json:"todaySearches"`
}

// LookupResult is the wire shape of a lookup. Definition is nil when the
// word is not in the store.
type LookupResult struct {
	Word       string  `json:"word"`
	Definition *string `json:"definition"`
}

// Found builds the result for a matched entry
func Found(entry WordEntry) LookupResult {
	def := entry.Definition
	return LookupResult{Word: entry.Word, Definition: &def}
}

// Missing builds the result for a word with no entry
func Missing(word string) LookupResult {
	return LookupResult{Word: word}
}

// IsFound reports whether the lookup matched an entry
func (r LookupResult) IsFound() bool {
	return r.Definition != nil
}
