package schedule

import (
	"time"

	"github.com/payday-dev/payday/internal/model"
)

// DefaultSemimonthlyOffset is the gap in days between the two semimonthly
// occurrences when the pair is derived from the anchor.
const DefaultSemimonthlyOffset = 15

// Pairing decides which two days of the month a semimonthly item falls on.
// Returned days may exceed a month's length; they are clamped per month.
type Pairing interface {
	Days(anchor time.Time) (first, second int)
}

// OffsetPairing derives the pair from the anchor's day: an anchor on or
// before Offset pairs with the day Offset later, a later anchor pairs with
// the day Offset earlier.
type OffsetPairing struct {
	Offset int
}

// Days implements Pairing.
func (p OffsetPairing) Days(anchor time.Time) (int, int) {
	d := anchor.Day()
	if d <= p.Offset {
		return d, d + p.Offset
	}
	return d - p.Offset, d
}

// FixedDays pins a semimonthly item to two explicit days of the month.
type FixedDays struct {
	First, Second int
}

// Days implements Pairing.
func (p FixedDays) Days(time.Time) (int, int) {
	if p.First > p.Second {
		return p.Second, p.First
	}
	return p.First, p.Second
}

func validatePairing(p Pairing, anchor time.Time) error {
	switch v := p.(type) {
	case OffsetPairing:
		if v.Offset < 1 || v.Offset > 27 {
			return configErr("semimonthly_offset", "offset %d outside 1..27", v.Offset)
		}
	case FixedDays:
		for _, d := range []int{v.First, v.Second} {
			if d < 1 || d > 31 {
				return configErr("semimonthly_days", "day %d outside 1..31", d)
			}
		}
		if v.First == v.Second {
			return configErr("semimonthly_days", "days must differ")
		}
		// The anchor is a real occurrence, so the pair has to land on it.
		y, m, _ := anchor.Date()
		if !model.ClampedDate(y, m, v.First).Equal(anchor) && !model.ClampedDate(y, m, v.Second).Equal(anchor) {
			return configErr("semimonthly_days", "anchor %s is not on day %d or %d",
				anchor.Format(model.DateFormat), v.First, v.Second)
		}
	}
	return nil
}
