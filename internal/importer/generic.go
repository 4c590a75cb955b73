package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/payday-dev/payday/internal/model"
)

// GenericParser reads a headed CSV with date, description and amount
// columns, plus optional id and account columns. Column order is free.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

var genericRequired = []string{"date", "description", "amount"}

// Parse reads a generic CSV.
func (p *GenericParser) Parse(r io.Reader, account string) ([]model.StatementEntry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range genericRequired {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ids := newIDGen()
	var entries []model.StatementEntry
	for i, rec := range records[1:] {
		date, err := model.ParseDate(field(rec, "date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, field(rec, "date"), err)
		}
		amount, err := decimal.NewFromString(field(rec, "amount"))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, field(rec, "amount"), err)
		}

		e := model.StatementEntry{
			ID:          field(rec, "id"),
			Date:        date,
			Description: field(rec, "description"),
			Amount:      amount,
			Account:     field(rec, "account"),
		}
		if e.Account == "" {
			e.Account = account
		}
		if e.ID == "" {
			e.ID = ids.next(e.Account, e.Date, e.Description, e.Amount)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
