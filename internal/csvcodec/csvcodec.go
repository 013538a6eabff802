// Package csvcodec serializes step entries to the two-column CSV exchange
// format (`date,steps`) and parses it back. The format is the external
// export/import contract: one header row, one row per entry in list order,
// ISO-8601 dates, UTF-8, no quoting.
package csvcodec

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avelichka/steptrack/internal/models"
)

// header is the required first row of every document.
var header = []string{"date", "steps"}

// ParseError reports a malformed CSV document, pointing at the offending
// 1-based line. Any ParseError aborts the whole import; no entries from a
// partially valid document are ever applied.
type ParseError struct {
	// Line is the 1-based line number of the failure.
	Line int
	// Msg describes what was wrong with the line.
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csv line %d: %s", e.Line, e.Msg)
}

// Encode renders entries as CSV text, header first, preserving list order.
func Encode(entries []models.StepEntry) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	for _, e := range entries {
		_ = w.Write([]string{e.Date, strconv.Itoa(e.Steps)})
	}
	w.Flush()
	return b.String()
}

// Decode parses CSV text produced by Encode (or a hand-filled import
// template). It validates the header, skips blank lines, and rejects rows
// with a wrong field count, a malformed date, or a non-numeric or negative
// step count. On failure it returns a *ParseError naming the bad line.
func Decode(text string) ([]models.StepEntry, error) {
	r := csv.NewReader(strings.NewReader(text))
	// Field-count errors are reported per line below, with better messages
	// than encoding/csv's own.
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		line := 1
		if pe, ok := err.(*csv.ParseError); ok {
			line = pe.Line
		}
		return nil, &ParseError{Line: line, Msg: err.Error()}
	}
	if len(records) == 0 {
		return nil, &ParseError{Line: 1, Msg: "missing header row \"date,steps\""}
	}
	if len(records[0]) != 2 || records[0][0] != header[0] || records[0][1] != header[1] {
		return nil, &ParseError{Line: 1, Msg: fmt.Sprintf("bad header %q, want \"date,steps\"", strings.Join(records[0], ","))}
	}

	entries := make([]models.StepEntry, 0, len(records)-1)
	// encoding/csv drops blank lines, so line numbers are reconstructed by
	// walking the original text alongside the records.
	lines := nonBlankLines(text)
	for i, rec := range records[1:] {
		line := 1 + i + 1
		if i+1 < len(lines) {
			line = lines[i+1]
		}
		if len(rec) != 2 {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("want 2 fields, got %d", len(rec))}
		}
		date, stepsField := rec[0], rec[1]
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("malformed date %q", date)}
		}
		steps, err := strconv.Atoi(strings.TrimSpace(stepsField))
		if err != nil {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("non-numeric steps %q", stepsField)}
		}
		if steps < 0 {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("negative steps %d", steps)}
		}
		entries = append(entries, models.StepEntry{Date: date, Steps: steps})
	}
	return entries, nil
}

// nonBlankLines returns the 1-based line numbers of all non-blank lines,
// in order, matching how encoding/csv skips empty lines.
func nonBlankLines(text string) []int {
	var nums []int
	for i, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			nums = append(nums, i+1)
		}
	}
	return nums
}
