// Package csvbill reads bills from ;-separated spreadsheets saved by Excel or
// LibreOffice with Brazilian number and date formats.
package csvbill

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/contas/internal/bill"
	enc "github.com/MrJamesThe3rd/contas/internal/encoding"
)

var dateLayouts = []string{"02/01/2006", "02-01-2006", time.DateOnly}

type Parser struct {
	profiles []Profile
}

// NewParser returns a parser trying the given profiles in order, or every
// known profile when none is given.
func NewParser(p ...Profile) *Parser {
	if len(p) == 0 {
		p = profiles
	}

	return &Parser{profiles: p}
}

// Parse returns one CreateParams per data row. Rows before the header and
// rows without a due date (totals, blank lines) are skipped; a data row with
// a missing description or a missing, unreadable or non-positive amount
// fails the whole file.
// Category is left empty when the file has none.
func (p *Parser) Parse(r io.Reader) ([]bill.CreateParams, error) {
	utf8r, _, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := p.detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no bill header found: expected columns Descrição, Valor and Vencimento")
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

type colIndex map[string]int

func (c colIndex) get(name string) int {
	if idx, ok := c[name]; ok {
		return idx
	}

	return -1
}

func (p *Parser) detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normalizeHeader(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range p.profiles {
			if matchesProfile(&p.profiles[i], cols) {
				return &p.profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]bill.CreateParams, error) {
	var (
		descIdx     = cols.get(p.DescCol)
		amountIdx   = cols.get(p.AmountCol)
		dueIdx      = cols.get(p.DueDateCol)
		categoryIdx = cols.get(p.CategoryCol)
		notesIdx    = cols.get(p.NotesCol)
	)

	params := []bill.CreateParams{}

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		due, ok := parseDate(cellValue(row, dueIdx))
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, err := parseAmount(cellValue(row, amountIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if amount <= 0 {
			return nil, fmt.Errorf("row %d: amount must be positive, got %s", rowNum, cellValue(row, amountIdx))
		}

		params = append(params, bill.CreateParams{
			Description: desc,
			Amount:      amount,
			DueDate:     due,
			Category:    cellValue(row, categoryIdx),
			Notes:       cellValue(row, notesIdx),
		})
	}

	return params, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
