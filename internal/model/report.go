package model

import "time"

// IngestReport summarizes one run of the ingestion pipeline.
type IngestReport struct {
	RunID       string        `json:"run_id"`
	Source      string        `json:"source"`
	SourceOK    bool          `json:"source_ok"`
	Lines       int           `json:"lines"`
	Skipped     int           `json:"skipped"`
	Records     int           `json:"records"`
	Winners     int           `json:"winners"`
	Intervals   int           `json:"intervals"`
	// Error is set when preparation failed and the empty result is served.
	Error       string        `json:"error,omitempty"`
	Diagnostics []Diagnostic  `json:"-"`
	Duration    time.Duration `json:"-"`
	CompletedAt time.Time     `json:"completed_at"`
}

// DiagnosticCounts tallies diagnostics by reason.
func (r IngestReport) DiagnosticCounts() map[Reason]int {
	counts := make(map[Reason]int)
	for _, d := range r.Diagnostics {
		counts[d.Reason]++
	}
	return counts
}
