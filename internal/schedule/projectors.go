package schedule

import (
	"time"

	"github.com/payday-dev/payday/internal/model"
)

// projector generates the raw occurrence dates of one frequency kind in
// [start, end]. Inputs are already day-normalized and validated.
type projector interface {
	project(r Rule, start, end time.Time) []time.Time
}

var projectors = map[model.FrequencyKind]projector{
	model.FrequencyWeekly:      intervalProjector{days: 7},
	model.FrequencyBiweekly:    intervalProjector{days: 14},
	model.FrequencyCustom:      intervalProjector{},
	model.FrequencyMonthly:     monthlyProjector{},
	model.FrequencySemimonthly: semimonthlyProjector{},
}

// intervalProjector steps a fixed number of days from the anchor in both
// directions. days == 0 takes the interval from the rule.
type intervalProjector struct {
	days int
}

func (p intervalProjector) project(r Rule, start, end time.Time) []time.Time {
	step := p.days
	if step == 0 {
		step = r.Frequency.IntervalDays
	}
	// First step k with anchor + k*step >= start.
	k := ceilDiv(model.DaysBetween(r.Anchor, start), step)

	var dates []time.Time
	for d := r.Anchor.AddDate(0, 0, k*step); !d.After(end); d = d.AddDate(0, 0, step) {
		dates = append(dates, d)
	}
	return dates
}

// monthlyProjector keeps the anchor's day of month, clamped to short months.
type monthlyProjector struct{}

func (monthlyProjector) project(r Rule, start, end time.Time) []time.Time {
	var dates []time.Time
	eachMonth(start, end, func(y int, m time.Month) {
		dates = appendInRange(dates, model.ClampedDate(y, m, r.Anchor.Day()), start, end)
	})
	return dates
}

// semimonthlyProjector emits the rule's day pair in every month.
type semimonthlyProjector struct{}

func (semimonthlyProjector) project(r Rule, start, end time.Time) []time.Time {
	first, second := r.pairing().Days(r.Anchor)
	var dates []time.Time
	eachMonth(start, end, func(y int, m time.Month) {
		dates = appendInRange(dates, model.ClampedDate(y, m, first), start, end)
		dates = appendInRange(dates, model.ClampedDate(y, m, second), start, end)
	})
	return dates
}

func eachMonth(start, end time.Time, fn func(int, time.Month)) {
	for cur := model.Date(start.Year(), start.Month(), 1); !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		fn(cur.Year(), cur.Month())
	}
}

func appendInRange(dates []time.Time, d, start, end time.Time) []time.Time {
	if d.Before(start) || d.After(end) {
		return dates
	}
	return append(dates, d)
}

// ceilDiv rounds a/b toward positive infinity for b > 0.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}
