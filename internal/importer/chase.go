package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payday-dev/payday/internal/model"
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. The export carries no row IDs, so each entry
// gets one derived from its content.
func (p *ChaseParser) Parse(r io.Reader, account string) ([]model.StatementEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	ids := newIDGen()
	var entries []model.StatementEntry
	for i, rec := range records[1:] {
		e, err := parseChaseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		e.Account = account
		e.ID = ids.next(account, e.Date, e.Description, e.Amount)
		entries = append(entries, e)
	}
	return entries, nil
}

func parseChaseRow(rec []string) (model.StatementEntry, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.StatementEntry{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.StatementEntry{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	return model.StatementEntry{
		Date:        date,
		Description: rec[chaseColDesc],
		Amount:      amount,
	}, nil
}
