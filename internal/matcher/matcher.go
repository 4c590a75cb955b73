// Package matcher pairs a projected occurrence with the statement entry that
// most plausibly realized it.
package matcher

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/payday-dev/payday/internal/ledger"
	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/names"
)

var hundred = decimal.NewFromInt(100)

// Options are the matching thresholds.
type Options struct {
	// AmountTolerancePct is the allowed deviation from the expected amount,
	// in percent of its absolute value. Inclusive.
	AmountTolerancePct decimal.Decimal
	// DateWindowDays is how far either side of the projected date an entry
	// may fall.
	DateWindowDays int
	// RespectAccountHint restricts candidates to accounts matching the
	// item name's parenthetical hint.
	RespectAccountHint bool
}

// DefaultOptions returns a 10% amount tolerance and a 3 day window.
func DefaultOptions() Options {
	return Options{
		AmountTolerancePct: decimal.NewFromInt(10),
		DateWindowDays:     3,
	}
}

// Match reconciles occ against the ledger.
func Match(occ model.Occurrence, view *ledger.View, pattern names.Pattern, opts Options) model.ReconciliationResult {
	return MatchExcluding(occ, view, pattern, opts, nil)
}

// MatchExcluding is Match with the entries in claimed removed from
// consideration.
func MatchExcluding(occ model.Occurrence, view *ledger.View, pattern names.Pattern, opts Options, claimed map[string]bool) model.ReconciliationResult {
	result := model.ReconciliationResult{Occurrence: occ, Status: model.StatusUnmatched}

	var candidates []model.StatementEntry
	for _, e := range view.EntriesInWindow(occ.Date, opts.DateWindowDays) {
		if claimed[e.ID] || !signAgrees(occ.Amount, e.Amount) || !pattern.Matches(e.Description) {
			continue
		}
		if opts.RespectAccountHint && !pattern.MatchesAccount(e.Account) {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return result
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return closer(occ, candidates[i], candidates[j])
	})

	best := candidates[0]
	result.Status = model.StatusAmountMismatch
	for _, c := range candidates {
		if WithinTolerance(occ.Amount, c.Amount, opts.AmountTolerancePct) {
			best = c
			result.Status = model.StatusMatched
			break
		}
	}

	result.Entry = &best
	result.DayOffset = model.DaysBetween(occ.Date, best.Date)
	result.AmountDelta = best.Amount.Sub(occ.Amount)
	return result
}

// WithinTolerance reports whether |actual - expected| <= |expected| * pct / 100.
func WithinTolerance(expected, actual, pct decimal.Decimal) bool {
	allowed := expected.Abs().Mul(pct).Div(hundred)
	return actual.Sub(expected).Abs().LessThanOrEqual(allowed)
}

func signAgrees(expected, actual decimal.Decimal) bool {
	switch expected.Sign() {
	case 1:
		return actual.IsPositive()
	case -1:
		return actual.IsNegative()
	default:
		return true
	}
}

// closer orders candidates by distance from the projected date, then from
// the expected amount, then by date and ID so the order is total.
func closer(occ model.Occurrence, a, b model.StatementEntry) bool {
	da, db := absInt(model.DaysBetween(occ.Date, a.Date)), absInt(model.DaysBetween(occ.Date, b.Date))
	if da != db {
		return da < db
	}
	aa, ab := a.Amount.Sub(occ.Amount).Abs(), b.Amount.Sub(occ.Amount).Abs()
	if c := aa.Cmp(ab); c != 0 {
		return c < 0
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
