package monitoring

import (
	"fmt"

	"github.com/sells-group/producer-intervals/internal/model"
)

// Health statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Check is one failed health condition.
type Check struct {
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Health is the evaluated state of the last ingestion run.
type Health struct {
	Status string             `json:"status"`
	Report model.IngestReport `json:"report"`
	Checks []Check            `json:"checks,omitempty"`
}

// Evaluator turns an ingest report into a Health verdict.
type Evaluator struct {
	// MaxSkippedRatio flags the run as degraded when more than this share
	// of data lines was dropped. Zero disables the check.
	MaxSkippedRatio float64
}

// Evaluate never fails: the service always answers, so problems are
// reported as "degraded" rather than as errors.
func (e Evaluator) Evaluate(report model.IngestReport) Health {
	h := Health{Status: StatusOK, Report: report}

	if !report.SourceOK {
		h.Checks = append(h.Checks, Check{
			Name:    "source",
			Message: fmt.Sprintf("source %q could not be read, serving an empty result", report.Source),
		})
	}

	if report.SourceOK && report.Error != "" {
		h.Checks = append(h.Checks, Check{
			Name:    "pipeline",
			Message: "preparation failed, serving an empty result",
			Details: map[string]any{"error": report.Error},
		})
	}

	if e.MaxSkippedRatio > 0 && report.Lines > 0 {
		ratio := float64(report.Skipped) / float64(report.Lines)
		if ratio > e.MaxSkippedRatio {
			h.Checks = append(h.Checks, Check{
				Name: "skipped_lines",
				Message: fmt.Sprintf("%.1f%% of lines skipped exceeds threshold %.1f%%",
					ratio*100, e.MaxSkippedRatio*100),
				Details: map[string]any{
					"skipped":   report.Skipped,
					"lines":     report.Lines,
					"threshold": e.MaxSkippedRatio,
				},
			})
		}
	}

	if len(h.Checks) > 0 {
		h.Status = StatusDegraded
	}
	return h
}
