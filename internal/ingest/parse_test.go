package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/producer-intervals/internal/model"
)

const header = "year;title;studios;producers;winner"

func withHeader(lines ...string) string {
	return header + "\n" + strings.Join(lines, "\n")
}

func parse(raw string) ([]model.Record, []model.Diagnostic) {
	res := NewParser(Options{}).Parse(raw)
	return res.Records, res.Diagnostics
}

func TestParse_ValidLines(t *testing.T) {
	records, diags := parse(withHeader(
		"1990;X;Y;Joel Silver;yes",
		"1991;X;Y;Joel Silver;YES",
		"1992;X;Y;Someone Else;no",
	))

	assert.Empty(t, diags)
	require.Len(t, records, 3)
	assert.Equal(t, model.Record{Year: 1990, Producer: "Joel Silver", Winner: true, Line: 2}, records[0])
	assert.Equal(t, model.Record{Year: 1991, Producer: "Joel Silver", Winner: true, Line: 3}, records[1])
	assert.Equal(t, model.Record{Year: 1992, Producer: "Someone Else", Winner: false, Line: 4}, records[2])
}

func TestParse_SkipsHeaderOnly(t *testing.T) {
	records, diags := parse(header)
	assert.Empty(t, records)
	assert.Empty(t, diags)

	records, diags = parse("")
	assert.Empty(t, records)
	assert.Empty(t, diags)
}

func TestParse_CRLF(t *testing.T) {
	records, diags := parse(header + "\r\n1990;X;Y;Joel Silver;yes\r\n1991;X;Y;Joel Silver;yes\r\n")
	assert.Empty(t, diags)
	require.Len(t, records, 2)
	assert.Equal(t, "Joel Silver", records[1].Producer)
	assert.True(t, records[1].Winner)
}

func TestParse_TrimsFields(t *testing.T) {
	records, diags := parse(withHeader("  1990 ; X ; Y ;  Joel Silver  ;  Yes "))
	assert.Empty(t, diags)
	require.Len(t, records, 1)
	assert.Equal(t, 1990, records[0].Year)
	assert.Equal(t, "Joel Silver", records[0].Producer)
	assert.True(t, records[0].Winner)
}

func TestParse_RejectedLines(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason model.Reason
	}{
		{"missing delimiter", "1990 X Y Joel Silver yes", model.ReasonMissingDelimiter},
		{"four fields", "1990;X;Y;Joel Silver", model.ReasonTooFewFields},
		{"empty year", " ;X;Y;Joel Silver;yes", model.ReasonEmptyField},
		{"empty producers", "1990;X;Y; ;yes", model.ReasonEmptyField},
		{"empty winner", "1990;X;Y;Joel Silver;", model.ReasonEmptyField},
		{"non numeric year", "abc;X;Y;Joel Silver;yes", model.ReasonInvalidYear},
		{"year with suffix", "1990a;X;Y;Joel Silver;yes", model.ReasonInvalidYear},
		{"year too small", "1899;X;Y;Joel Silver;yes", model.ReasonInvalidYear},
		{"year too large", "2101;X;Y;Joel Silver;yes", model.ReasonInvalidYear},
		{"invalid winner", "1990;X;Y;Joel Silver;maybe", model.ReasonInvalidWinner},
		{"only separators", "1990;X;Y;, ,;yes", model.ReasonNoProducers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, diags := parse(withHeader(tt.line))
			assert.Empty(t, records)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.reason, diags[0].Reason)
			assert.Equal(t, model.SeverityError, diags[0].Severity)
			assert.Equal(t, 2, diags[0].Line)
			assert.Equal(t, tt.line, diags[0].Content)
		})
	}
}

func TestParse_YearBoundsInclusive(t *testing.T) {
	records, diags := parse(withHeader("1900;X;Y;A;yes", "2100;X;Y;B;yes"))
	assert.Empty(t, diags)
	require.Len(t, records, 2)
	assert.Equal(t, 1900, records[0].Year)
	assert.Equal(t, 2100, records[1].Year)
}

func TestParse_ExcessFieldsWarnsAndKeepsLine(t *testing.T) {
	line := "1990;X;Y;Joel Silver;yes;extra;more"
	records, diags := parse(withHeader(line))

	require.Len(t, records, 1)
	assert.Equal(t, "Joel Silver", records[0].Producer)
	require.Len(t, diags, 1)
	assert.Equal(t, model.ReasonExcessFields, diags[0].Reason)
	assert.Equal(t, model.SeverityWarning, diags[0].Severity)
	assert.False(t, diags[0].Skipped())
	assert.Equal(t, line, diags[0].Content)
}

func TestParse_ExcessFieldsThenRejected(t *testing.T) {
	records, diags := parse(withHeader("1990;X;Y;Joel Silver;maybe;extra"))
	assert.Empty(t, records)
	require.Len(t, diags, 2)
	assert.Equal(t, model.ReasonExcessFields, diags[0].Reason)
	assert.Equal(t, model.ReasonInvalidWinner, diags[1].Reason)
}

func TestParse_MalformedLinesDoNotAbort(t *testing.T) {
	records, diags := parse(withHeader(
		"1990 X Y Joel Silver yes",
		"1990;X;Y;Joel Silver",
		"abc;X;Y;Joel Silver;yes",
		"1990;X;Y;Joel Silver;maybe",
		"2002;X;Y;Matthew Vaughn;yes",
	))

	require.Len(t, diags, 4)
	for i, d := range diags {
		assert.Equal(t, i+2, d.Line)
		assert.True(t, d.Skipped())
	}
	require.Len(t, records, 1)
	assert.Equal(t, model.Record{Year: 2002, Producer: "Matthew Vaughn", Winner: true, Line: 6}, records[0])
}

func TestParse_MultiProducerLine(t *testing.T) {
	records, diags := parse(withHeader("1995;X;Y;Alice and Bob;no"))
	assert.Empty(t, diags)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, 1995, r.Year)
		assert.False(t, r.Winner)
		assert.Equal(t, 2, r.Line)
	}
	assert.Equal(t, "Alice", records[0].Producer)
	assert.Equal(t, "Bob", records[1].Producer)
}

func TestParse_BlankWinnerOption(t *testing.T) {
	p := NewParser(Options{AllowBlankWinner: true})
	res := p.Parse(withHeader("1980;Cruising;Lorimar;Jerry Weintraub;"))
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Records, 1)
	assert.False(t, res.Records[0].Winner)
}

func TestSplitProducers(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Joel Silver", []string{"Joel Silver"}},
		{"Alice and Bob", []string{"Alice", "Bob"}},
		{"Alice, Bob and Carol", []string{"Alice", "Bob", "Carol"}},
		{"Alice,,Bob", []string{"Alice", "Bob"}},
		{"Andrew Anderson", []string{"Andrew Anderson"}},
		{"Sandy and", []string{"Sandy and"}},
		{" , ", nil},
		// Decomposed e + combining acute accent is folded into the composed form.
		{"Beyonce\u0301", []string{"Beyonc\u00e9"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitProducers(tt.in))
		})
	}
}

func TestSplitLines_Numbering(t *testing.T) {
	lines := SplitLines("\n  h\na;b\r\nc;d\n\n")
	require.Len(t, lines, 2)
	assert.Equal(t, model.RawLine{Number: 2, Content: "a;b"}, lines[0])
	assert.Equal(t, model.RawLine{Number: 3, Content: "c;d"}, lines[1])
}

func TestParseReader_StripsBOM(t *testing.T) {
	input := "\ufeff" + withHeader("1990;X;Y;Joel Silver;yes")
	res, err := NewParser(Options{}).ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 1, res.Lines)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1990, res.Records[0].Year)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParseReader_ReadError(t *testing.T) {
	_, err := NewParser(Options{}).ParseReader(io.MultiReader(strings.NewReader(header+"\n"), failingReader{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestResult_CountsLinesAndSkips(t *testing.T) {
	res := NewParser(Options{}).Parse(withHeader(
		"1990;X;Y;A;yes",
		"garbage",
		"1991;X;Y;A;yes;extra",
		"1992;X;Y;A, B;no",
	))
	assert.Equal(t, 4, res.Lines)
	assert.Len(t, res.Records, 4)
	assert.Len(t, res.Diagnostics, 2)
	assert.Equal(t, 1, res.Skipped())
}

func TestSourceError(t *testing.T) {
	assert.NoError(t, Unreadable("x.csv", nil))

	inner := errors.New("no such file")
	err := fmt.Errorf("prepare: %w", Unreadable("x.csv", inner))
	assert.ErrorIs(t, err, ErrSourceUnreadable)
	assert.ErrorIs(t, err, inner)

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "x.csv", se.Location)
	assert.Contains(t, err.Error(), "source unreadable: x.csv: no such file")
}

func TestParse_BlankLineBetweenRecords(t *testing.T) {
	records, diags := parse(withHeader("1990;X;Y;A;yes", "", "1991;X;Y;A;yes"))
	require.Len(t, records, 2)
	require.Len(t, diags, 1)
	assert.Equal(t, model.ReasonMissingDelimiter, diags[0].Reason)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 4, records[1].Line)
}
