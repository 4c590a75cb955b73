// Package reconcile runs the schedule, matcher, income, and drift
// components over a set of recurring items and one ledger snapshot.
//
// An Engine only holds its thresholds, so one Engine may serve any number of
// concurrent callers. A malformed item is reported as an ItemError and never
// stops the other items from being processed.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payday-dev/payday/internal/drift"
	"github.com/payday-dev/payday/internal/income"
	"github.com/payday-dev/payday/internal/ledger"
	"github.com/payday-dev/payday/internal/matcher"
	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/names"
	"github.com/payday-dev/payday/internal/schedule"
)

// ItemError is a failure scoped to one recurring item.
type ItemError struct {
	ItemID string
	Err    error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %s: %v", e.ItemID, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Engine evaluates items against ledgers.
type Engine struct {
	options matcher.Options
	pairing schedule.Pairing
}

// New returns an Engine. A nil pairing selects the default semimonthly
// offset.
func New(opts matcher.Options, pairing schedule.Pairing) *Engine {
	return &Engine{options: opts, pairing: pairing}
}

// Pairing returns the semimonthly pairing applied to items without fixed
// days.
func (e *Engine) Pairing() schedule.Pairing { return e.pairing }

// Project returns every occurrence of every item in [start, end], sorted by
// date then item ID.
func (e *Engine) Project(items []model.RecurringItem, start, end time.Time) ([]model.Occurrence, []ItemError) {
	var all []model.Occurrence
	var errs []ItemError
	for _, it := range items {
		occs, err := schedule.ProjectItem(it, e.pairing, start, end)
		if err != nil {
			errs = append(errs, ItemError{ItemID: it.ID, Err: err})
			continue
		}
		all = append(all, occs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].ItemID < all[j].ItemID
	})
	return all, errs
}

// Report is the reconciliation of all items over one date range.
type Report struct {
	Start   time.Time
	End     time.Time
	Results []model.ReconciliationResult
	Errors  []ItemError
}

// Count returns how many results have status.
func (r Report) Count(status model.MatchStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// ForItem returns the results of one item in date order.
func (r Report) ForItem(itemID string) []model.ReconciliationResult {
	var out []model.ReconciliationResult
	for _, res := range r.Results {
		if res.Occurrence.ItemID == itemID {
			out = append(out, res)
		}
	}
	return out
}

// Reconcile matches every occurrence in [start, end] against view. Within
// one item a statement entry is attached to at most one occurrence;
// occurrences claim entries in date order.
func (e *Engine) Reconcile(items []model.RecurringItem, view *ledger.View, start, end time.Time) Report {
	report := Report{Start: model.Day(start), End: model.Day(end)}
	for _, it := range items {
		occs, err := schedule.ProjectItem(it, e.pairing, start, end)
		if err != nil {
			report.Errors = append(report.Errors, ItemError{ItemID: it.ID, Err: err})
			continue
		}
		pattern := names.Compile(it.Name)
		claimed := make(map[string]bool)
		for _, occ := range occs {
			res := matcher.MatchExcluding(occ, view, pattern, e.options, claimed)
			if res.Entry != nil {
				claimed[res.Entry.ID] = true
			}
			report.Results = append(report.Results, res)
		}
	}
	sort.SliceStable(report.Results, func(i, j int) bool {
		a, b := report.Results[i].Occurrence, report.Results[j].Occurrence
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ItemID < b.ItemID
	})
	return report
}

// IncomeCheck compares a month's actual paycheck deposits with the
// paycheck occurrences projected for it.
type IncomeCheck struct {
	Actual      income.Summary
	Projected   decimal.Decimal
	Occurrences int
	// Difference is actual minus projected; negative means income is short.
	Difference decimal.Decimal
	Errors     []ItemError
}

// CheckIncome totals the month containing ref. Items of kind paycheck feed
// both the projection and the configured-name classifier.
func (e *Engine) CheckIncome(items []model.RecurringItem, view *ledger.View, ref time.Time, keywords []string) IncomeCheck {
	var paychecks []model.RecurringItem
	var paycheckNames []string
	for _, it := range items {
		if it.Kind == model.KindPaycheck {
			paychecks = append(paychecks, it)
			paycheckNames = append(paycheckNames, it.Name)
		}
	}

	actual := income.Summarize(view, ref, income.NewClassifier(paycheckNames, keywords))
	occs, errs := e.Project(paychecks, actual.MonthStart, actual.MonthEnd)

	projected := model.SumAmounts(occs)
	return IncomeCheck{
		Actual:      actual,
		Projected:   projected,
		Occurrences: len(occs),
		Difference:  actual.Total.Sub(projected),
		Errors:      errs,
	}
}

// SuggestAnchors proposes anchors for every item with ledger history.
// Items without a matching entry are omitted.
func (e *Engine) SuggestAnchors(items []model.RecurringItem, view *ledger.View) ([]drift.Suggestion, []ItemError) {
	var out []drift.Suggestion
	var errs []ItemError
	for _, it := range items {
		s, ok, err := drift.Resolve(it, view, e.pairing)
		if err != nil {
			errs = append(errs, ItemError{ItemID: it.ID, Err: err})
			continue
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, errs
}

// Due is the next occurrence of one item.
type Due struct {
	ItemID string
	Date   time.Time
}

// NextDue computes each item's first occurrence on or after asOf.
func (e *Engine) NextDue(items []model.RecurringItem, asOf time.Time) ([]Due, []ItemError) {
	var out []Due
	var errs []ItemError
	for _, it := range items {
		d, err := schedule.NextDue(schedule.RuleFor(it, e.pairing), asOf)
		if err != nil {
			errs = append(errs, ItemError{ItemID: it.ID, Err: schedule.WithItem(err, it.ID)})
			continue
		}
		out = append(out, Due{ItemID: it.ID, Date: d})
	}
	return out, errs
}
