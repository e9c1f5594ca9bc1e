// Package ingest turns the semicolon-delimited nomination file into validated
// records. Malformed lines never abort a parse: each one is skipped and
// reported as a diagnostic.
package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/producer-intervals/internal/model"
)

const (
	delimiter = ";"
	minFields = 5

	colYear      = 0
	colProducers = 3
	colWinner    = 4
)

// producerSeparator matches the literal "," or " and " between producer names.
var producerSeparator = regexp.MustCompile(`,| and `)

// Options tunes the parser.
type Options struct {
	// AllowBlankWinner treats an empty winner column as "no" instead of
	// rejecting the line.
	AllowBlankWinner bool
}

// Parser validates and normalizes source lines.
type Parser struct {
	opts Options
}

// NewParser creates a Parser with the given options.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Result is the outcome of parsing one source.
type Result struct {
	// Lines counts data lines, header excluded.
	Lines       int
	Records     []model.Record
	Diagnostics []model.Diagnostic
}

// Skipped counts the data lines that were dropped.
func (r Result) Skipped() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Skipped() {
			n++
		}
	}
	return n
}

// ParseReader reads the whole source as UTF-8, dropping a leading byte order
// mark, and parses it. Only read failures are returned as errors.
func (p *Parser) ParseReader(r io.Reader) (Result, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return Result{}, err
	}
	return p.Parse(string(data)), nil
}

// Parse skips the header line and parses every remaining line.
func (p *Parser) Parse(raw string) Result {
	lines := SplitLines(raw)
	res := Result{Lines: len(lines)}
	for _, line := range lines {
		recs, diags := p.parseLine(line)
		res.Records = append(res.Records, recs...)
		res.Diagnostics = append(res.Diagnostics, diags...)
	}
	return res
}

// SplitLines trims the input, splits it on LF or CRLF, and drops the header.
// Numbering starts at 2 since the header is line 1.
func SplitLines(raw string) []model.RawLine {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	lines := make([]model.RawLine, 0, len(parts)-1)
	for i, part := range parts[1:] {
		lines = append(lines, model.RawLine{
			Number:  i + 2,
			Content: strings.TrimSuffix(part, "\r"),
		})
	}
	return lines
}

func (p *Parser) parseLine(line model.RawLine) ([]model.Record, []model.Diagnostic) {
	var diags []model.Diagnostic
	skip := func(reason model.Reason, format string, args ...any) ([]model.Record, []model.Diagnostic) {
		return nil, append(diags, model.NewDiagnostic(line, reason, fmt.Sprintf(format, args...)))
	}

	if !strings.Contains(line.Content, delimiter) {
		return skip(model.ReasonMissingDelimiter, "delimiter %q not found", delimiter)
	}

	fields := strings.Split(line.Content, delimiter)
	if len(fields) < minFields {
		return skip(model.ReasonTooFewFields, "fewer than %d fields", minFields)
	}
	if len(fields) > minFields {
		diags = append(diags, model.NewDiagnostic(line, model.ReasonExcessFields,
			fmt.Sprintf("%d fields found, using only the first %d", len(fields), minFields)))
	}

	year := strings.TrimSpace(fields[colYear])
	producers := strings.TrimSpace(fields[colProducers])
	winner := strings.TrimSpace(fields[colWinner])

	if year == "" || producers == "" || (winner == "" && !p.opts.AllowBlankWinner) {
		return skip(model.ReasonEmptyField, "empty field(s): year=%q producers=%q winner=%q", year, producers, winner)
	}

	yearNum, err := strconv.Atoi(year)
	if err != nil || yearNum < model.MinYear || yearNum > model.MaxYear {
		return skip(model.ReasonInvalidYear, "invalid year %q", year)
	}

	isWinner, ok := parseWinner(winner)
	if !ok {
		return skip(model.ReasonInvalidWinner, "invalid winner value %q, expected \"yes\" or \"no\"", winner)
	}

	names := SplitProducers(producers)
	if len(names) == 0 {
		return skip(model.ReasonNoProducers, "no valid producer")
	}

	records := make([]model.Record, 0, len(names))
	for _, name := range names {
		records = append(records, model.Record{
			Year:     yearNum,
			Producer: name,
			Winner:   isWinner,
			Line:     line.Number,
		})
	}
	return records, diags
}

func parseWinner(v string) (winner bool, ok bool) {
	switch strings.ToLower(v) {
	case "yes":
		return true, true
	case "no", "":
		return false, true
	default:
		return false, false
	}
}

// SplitProducers splits a producer column on "," or " and ", trims each name,
// normalizes it to NFC, and drops empty names.
func SplitProducers(field string) []string {
	var names []string
	for _, piece := range producerSeparator.Split(field, -1) {
		name := strings.TrimSpace(piece)
		if name == "" {
			continue
		}
		names = append(names, norm.NFC.String(name))
	}
	return names
}
