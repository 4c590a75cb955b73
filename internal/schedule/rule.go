// Package schedule projects the dates on which a recurring item is expected
// to occur.
//
// Every frequency kind has its own projector, looked up from a registry the
// same way for all kinds. Projection is a pure function of the anchor, the
// rule, and the requested range; the anchor itself does not need to lie in
// the range.
package schedule

import (
	"slices"
	"strings"
	"time"

	"github.com/payday-dev/payday/internal/model"
)

// Rule is everything needed to project one item's occurrences.
type Rule struct {
	Anchor    time.Time
	Frequency model.Frequency
	// Pairing applies to semimonthly rules only. Nil means
	// OffsetPairing{DefaultSemimonthlyOffset}.
	Pairing Pairing
}

// RuleFor builds the rule for item. A per-item semimonthly pair takes
// precedence over pairing.
func RuleFor(item model.RecurringItem, pairing Pairing) Rule {
	r := Rule{Anchor: item.AnchorDate, Frequency: item.Frequency, Pairing: pairing}
	if item.HasFixedSemimonthlyDays() {
		r.Pairing = FixedDays{First: item.SemimonthlyDays[0], Second: item.SemimonthlyDays[1]}
	}
	return r
}

func (r Rule) pairing() Pairing {
	if r.Pairing == nil {
		return OffsetPairing{Offset: DefaultSemimonthlyOffset}
	}
	return r.Pairing
}

// Validate reports the first reason the rule cannot be evaluated.
func (r Rule) Validate() error {
	if r.Anchor.IsZero() {
		return configErr("anchor_date", "missing")
	}
	if _, ok := projectors[r.Frequency.Kind]; !ok {
		return configErr("frequency", "unknown kind %q", r.Frequency.Kind)
	}
	switch r.Frequency.Kind {
	case model.FrequencyCustom:
		if r.Frequency.IntervalDays <= 0 {
			return configErr("interval_days", "must be positive, got %d", r.Frequency.IntervalDays)
		}
	case model.FrequencySemimonthly:
		return validatePairing(r.pairing(), model.Day(r.Anchor))
	}
	return nil
}

// ParseFrequency turns a frequency name into a Frequency. interval is read
// only for custom rules.
func ParseFrequency(kind string, interval int) (model.Frequency, error) {
	k := model.FrequencyKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case "custom-interval", "every":
		k = model.FrequencyCustom
	}
	if _, ok := projectors[k]; !ok {
		return model.Frequency{}, configErr("frequency", "unknown kind %q", kind)
	}
	f := model.Frequency{Kind: k}
	if k == model.FrequencyCustom {
		if interval <= 0 {
			return model.Frequency{}, configErr("interval_days", "must be positive, got %d", interval)
		}
		f.IntervalDays = interval
	}
	return f, nil
}

// Project returns the occurrence dates of r within [start, end], ascending
// and without duplicates. Times of day are ignored.
func Project(r Rule, start, end time.Time) ([]time.Time, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil, nil
	}
	r.Anchor = model.Day(r.Anchor)

	dates := projectors[r.Frequency.Kind].project(r, start, end)
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(dates, func(a, b time.Time) bool { return a.Equal(b) }), nil
}

// ProjectOccurrences projects an anchor and frequency with default
// semimonthly pairing.
func ProjectOccurrences(anchor time.Time, freq model.Frequency, start, end time.Time) ([]time.Time, error) {
	return Project(Rule{Anchor: anchor, Frequency: freq}, start, end)
}

// ProjectItem projects item into Occurrences. Errors are ConfigErrors
// carrying the item's ID.
func ProjectItem(item model.RecurringItem, pairing Pairing, start, end time.Time) ([]model.Occurrence, error) {
	dates, err := Project(RuleFor(item, pairing), start, end)
	if err != nil {
		return nil, WithItem(err, item.ID)
	}
	occs := make([]model.Occurrence, len(dates))
	for i, d := range dates {
		occs[i] = model.Occurrence{ItemID: item.ID, Amount: item.Amount, Date: d}
	}
	return occs, nil
}

// NextDue returns the first occurrence of r on or after asOf.
func NextDue(r Rule, asOf time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}
	// Every rule occurs at least once in any window this long.
	horizon := 62
	if r.Frequency.Kind == model.FrequencyCustom && r.Frequency.IntervalDays > horizon {
		horizon = r.Frequency.IntervalDays
	}
	dates, err := Project(r, asOf, model.Day(asOf).AddDate(0, 0, horizon))
	if err != nil {
		return time.Time{}, err
	}
	if len(dates) == 0 {
		return time.Time{}, nil
	}
	return dates[0], nil
}
