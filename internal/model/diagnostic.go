package model

import "fmt"

// Severity classifies a parser diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"   // line skipped
	SeverityWarning Severity = "warning" // line kept
)

// Reason identifies why a diagnostic was raised.
type Reason string

const (
	ReasonMissingDelimiter Reason = "missing_delimiter"
	ReasonTooFewFields     Reason = "too_few_fields"
	ReasonExcessFields     Reason = "excess_fields"
	ReasonEmptyField       Reason = "empty_field"
	ReasonInvalidYear      Reason = "invalid_year"
	ReasonInvalidWinner    Reason = "invalid_winner"
	ReasonNoProducers      Reason = "no_producers"
)

// Severity returns the severity implied by the reason. Only excess fields
// are recoverable; everything else means the line was dropped.
func (r Reason) Severity() Severity {
	if r == ReasonExcessFields {
		return SeverityWarning
	}
	return SeverityError
}

// Diagnostic describes a problem found on one source line.
type Diagnostic struct {
	Line     int      `json:"line"`
	Reason   Reason   `json:"reason"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Content  string   `json:"content"`
}

// NewDiagnostic builds a diagnostic for the given line.
func NewDiagnostic(line RawLine, reason Reason, message string) Diagnostic {
	return Diagnostic{
		Line:     line.Number,
		Reason:   reason,
		Severity: reason.Severity(),
		Message:  message,
		Content:  line.Content,
	}
}

// Skipped reports whether the offending line was dropped.
func (d Diagnostic) Skipped() bool {
	return d.Severity == SeverityError
}

func (d Diagnostic) String() string {
	verb := "skipped"
	if !d.Skipped() {
		verb = "warning"
	}
	return fmt.Sprintf("[line %d] %s: %s. content: %s", d.Line, verb, d.Message, d.Content)
}
