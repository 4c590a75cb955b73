package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Occurrence is a single projected date for a RecurringItem.
type Occurrence struct {
	ItemID string
	Amount decimal.Decimal
	Date   time.Time
}

// MatchStatus is the outcome of reconciling one occurrence.
type MatchStatus string

const (
	StatusMatched        MatchStatus = "matched"
	StatusUnmatched      MatchStatus = "unmatched"
	StatusAmountMismatch MatchStatus = "partial-amount-mismatch"
)

// ReconciliationResult pairs an Occurrence with at most one statement entry.
type ReconciliationResult struct {
	Occurrence Occurrence
	Entry      *StatementEntry // nil when unmatched
	Status     MatchStatus
	// DayOffset is entry date minus occurrence date, in days.
	DayOffset int
	// AmountDelta is entry amount minus expected amount.
	AmountDelta decimal.Decimal
}

// SumAmounts totals the expected amounts of occs.
func SumAmounts(occs []Occurrence) decimal.Decimal {
	total := decimal.Zero
	for _, o := range occs {
		total = total.Add(o.Amount)
	}
	return total
}
