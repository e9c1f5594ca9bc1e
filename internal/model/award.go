// Package model defines the domain types shared across the ingestion pipeline,
// the repository backends, and the HTTP layer.
package model

// Year bounds accepted by the record parser.
const (
	MinYear = 1900
	MaxYear = 2100
)

// RawLine is a single line of source text with its 1-based position in the file.
type RawLine struct {
	Number  int
	Content string
}

// Record is one validated (line, producer) pair. A source line that credits
// several producers expands into several records sharing Year and Winner.
type Record struct {
	Year     int    `json:"year"`
	Producer string `json:"producer"`
	Winner   bool   `json:"winner"`
	Line     int    `json:"line"`
}

// WinEvent is a Record narrowed to winners.
type WinEvent struct {
	Producer string `json:"producer"`
	Year     int    `json:"year"`
}
