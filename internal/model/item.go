package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind classifies a recurring item.
type ItemKind string

const (
	KindBill     ItemKind = "bill"
	KindPaycheck ItemKind = "paycheck"
	KindTransfer ItemKind = "transfer"
	KindGoal     ItemKind = "goal"
)

// FrequencyKind names a recurrence rule.
type FrequencyKind string

const (
	FrequencyWeekly      FrequencyKind = "weekly"
	FrequencyBiweekly    FrequencyKind = "biweekly"
	FrequencySemimonthly FrequencyKind = "semimonthly"
	FrequencyMonthly     FrequencyKind = "monthly"
	FrequencyCustom      FrequencyKind = "custom"
)

// Frequency is a recurrence rule. IntervalDays is only meaningful for
// FrequencyCustom.
type Frequency struct {
	Kind         FrequencyKind
	IntervalDays int
}

func (f Frequency) String() string {
	if f.Kind == FrequencyCustom {
		return "custom-interval(" + strconv.Itoa(f.IntervalDays) + " days)"
	}
	return string(f.Kind)
}

// RecurringItem is a configured bill, paycheck, transfer, or goal.
type RecurringItem struct {
	ID        string
	Name      string // may carry an account hint, e.g. "Rent (Checking)"
	Kind      ItemKind
	Amount    decimal.Decimal // signed: negative for money leaving the account
	Frequency Frequency
	// AnchorDate is a date the item is known to have actually occurred.
	AnchorDate time.Time
	// NextDue is a cached projection; zero when unknown.
	NextDue time.Time
	// SemimonthlyDays pins the two days of a semimonthly item. Zero means
	// the pair is derived from AnchorDate.
	SemimonthlyDays [2]int
}

// HasFixedSemimonthlyDays reports whether the item pins its semimonthly pair.
func (it RecurringItem) HasFixedSemimonthlyDays() bool {
	return it.SemimonthlyDays[0] != 0 || it.SemimonthlyDays[1] != 0
}
