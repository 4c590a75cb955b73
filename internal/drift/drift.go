// Package drift proposes corrected anchor dates from the statement ledger.
// It never modifies an item; accepting a suggestion is the caller's job.
package drift

import (
	"time"

	"github.com/payday-dev/payday/internal/ledger"
	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/schedule"
)

// SuggestAnchor returns the date of the latest ledger entry matching
// itemName. ok is false when nothing matches, which means the anchor cannot
// be corrected automatically.
func SuggestAnchor(view *ledger.View, itemName string) (time.Time, bool) {
	e, ok := view.MostRecentMatching(itemName)
	if !ok {
		return time.Time{}, false
	}
	return e.Date, true
}

// Suggestion describes a proposed anchor for one item.
type Suggestion struct {
	ItemID         string
	CurrentAnchor  time.Time
	ProposedAnchor time.Time
	Entry          model.StatementEntry
	// ShiftDays is ProposedAnchor minus CurrentAnchor.
	ShiftDays int
	// OnSchedule is true when the current rule already projects
	// ProposedAnchor, so adopting it would not change any projection.
	OnSchedule bool
}

// Changed reports whether the proposal differs from the current anchor.
func (s Suggestion) Changed() bool {
	return !s.ProposedAnchor.Equal(s.CurrentAnchor)
}

// Resolve builds a Suggestion for item. ok is false when the ledger has no
// matching entry. An invalid rule is returned as a schedule ConfigError.
func Resolve(item model.RecurringItem, view *ledger.View, pairing schedule.Pairing) (Suggestion, bool, error) {
	rule := schedule.RuleFor(item, pairing)
	if err := rule.Validate(); err != nil {
		return Suggestion{}, false, schedule.WithItem(err, item.ID)
	}

	e, ok := view.MostRecentMatching(item.Name)
	if !ok {
		return Suggestion{}, false, nil
	}

	current := model.Day(item.AnchorDate)
	hits, err := schedule.Project(rule, e.Date, e.Date)
	if err != nil {
		return Suggestion{}, false, schedule.WithItem(err, item.ID)
	}

	return Suggestion{
		ItemID:         item.ID,
		CurrentAnchor:  current,
		ProposedAnchor: e.Date,
		Entry:          e,
		ShiftDays:      model.DaysBetween(current, e.Date),
		OnSchedule:     len(hits) > 0,
	}, true, nil
}
