package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/encoding"
)

const (
	colID          = "id"
	colTitle       = "title"
	colSummary     = "summary"
	colCategory    = "category"
	colEligibility = "eligibility"
	colAmount      = "amount"
	colDocuments   = "documents"
	colDeadline    = "deadline"
)

var headerAliases = map[string]string{
	"id":                 colID,
	"title":              colTitle,
	"name":               colTitle,
	"scholarship":        colTitle,
	"summary":            colSummary,
	"description":        colSummary,
	"category":           colCategory,
	"eligibility":        colEligibility,
	"amount":             colAmount,
	"award":              colAmount,
	"award amount":       colAmount,
	"documents":          colDocuments,
	"documents required": colDocuments,
	"required documents": colDocuments,
	"deadline":           colDeadline,
	"last date":          colDeadline,
}

var deadlineLayouts = []string{time.DateOnly, "02-01-2006", "02/01/2006", "January 2, 2006"}

// Parse reads a catalog spreadsheet export. Leading rows before the header
// (titles, export notes) are skipped; the header is the first row naming at
// least a title and an amount column. Both ';' and ',' separators are accepted
// and the input may be in any charset encoding.NewUTF8Reader understands.
func Parse(r io.Reader) ([]*Scholarship, error) {
	decoded, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	br := bufio.NewReader(decoded)

	head, err := br.Peek(2048)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffSeparator(head)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var (
		columns      map[string]int
		scholarships []*Scholarship
	)

	for line, row := range rows {
		if columns == nil {
			columns = headerColumns(row)
			continue
		}

		if blank(row) {
			continue
		}

		sch, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformed, line+1, err)
		}

		scholarships = append(scholarships, sch)
	}

	if columns == nil {
		return nil, fmt.Errorf("%w: no header row with %q and %q columns found", ErrMalformed, colTitle, colAmount)
	}

	return scholarships, nil
}

// headerColumns returns the column index map when row looks like the header, nil otherwise.
func headerColumns(row []string) map[string]int {
	columns := make(map[string]int)

	for i, col := range row {
		key, ok := headerAliases[strings.ToLower(strings.TrimSpace(col))]
		if !ok {
			continue
		}

		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	_, hasTitle := columns[colTitle]
	_, hasAmount := columns[colAmount]

	if !hasTitle || !hasAmount {
		return nil
	}

	return columns
}

func parseRow(row []string, columns map[string]int) (*Scholarship, error) {
	get := func(col string) string {
		idx, ok := columns[col]
		if !ok || idx >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[idx])
	}

	title := get(colTitle)
	if title == "" {
		return nil, fmt.Errorf("title is empty")
	}

	amount, err := ParseAmount(get(colAmount))
	if err != nil {
		return nil, fmt.Errorf("amount for %q: %w", title, err)
	}

	sch := &Scholarship{
		ID:                StableID(title),
		Title:             title,
		Summary:           get(colSummary),
		Category:          get(colCategory),
		Eligibility:       get(colEligibility),
		Amount:            amount,
		RequiredDocuments: splitDocuments(get(colDocuments)),
	}

	if raw := get(colID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("id for %q: %w", title, err)
		}

		sch.ID = id
	}

	if raw := get(colDeadline); raw != "" {
		deadline, err := parseDeadline(raw)
		if err != nil {
			return nil, fmt.Errorf("deadline for %q: %w", title, err)
		}

		sch.Deadline = deadline
	}

	return sch, nil
}

func parseDeadline(raw string) (time.Time, error) {
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func splitDocuments(raw string) []string {
	if raw == "" {
		return nil
	}

	var docs []string

	for _, d := range strings.Split(raw, "|") {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}

	return docs
}

func sniffSeparator(head []byte) rune {
	firstLines := head
	if idx := bytes.LastIndexByte(head, '\n'); idx > 0 {
		firstLines = head[:idx]
	}

	if bytes.Count(firstLines, []byte{';'}) > bytes.Count(firstLines, []byte{','}) {
		return ';'
	}

	return ','
}

func blank(row []string) bool {
	for _, col := range row {
		if strings.TrimSpace(col) != "" {
			return false
		}
	}

	return true
}
