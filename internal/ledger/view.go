// Package ledger provides a read-only, date-sorted index over statement
// entries.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/names"
)

// View is an immutable snapshot of statement entries sorted by date. A nil
// *View behaves as an empty ledger. Views are safe for concurrent use.
type View struct {
	entries []model.StatementEntry
}

// NewView copies entries, truncates their dates to the day, and sorts them
// by date (ties broken by ID).
func NewView(entries []model.StatementEntry) *View {
	sorted := make([]model.StatementEntry, len(entries))
	copy(sorted, entries)
	for i := range sorted {
		sorted[i].Date = model.Day(sorted[i].Date)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &View{entries: sorted}
}

// Len returns the number of entries.
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// All returns every entry, ascending by date.
func (v *View) All() []model.StatementEntry {
	if v == nil {
		return nil
	}
	return clone(v.entries)
}

// Between returns entries dated within [start, end], ascending.
func (v *View) Between(start, end time.Time) []model.StatementEntry {
	if v == nil {
		return nil
	}
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return nil
	}
	lo := sort.Search(len(v.entries), func(i int) bool {
		return !v.entries[i].Date.Before(start)
	})
	hi := sort.Search(len(v.entries), func(i int) bool {
		return v.entries[i].Date.After(end)
	})
	if lo >= hi {
		return nil
	}
	return clone(v.entries[lo:hi])
}

// EntriesInWindow returns entries within toleranceDays of center, ascending.
func (v *View) EntriesInWindow(center time.Time, toleranceDays int) []model.StatementEntry {
	if toleranceDays < 0 {
		toleranceDays = 0
	}
	center = model.Day(center)
	return v.Between(center.AddDate(0, 0, -toleranceDays), center.AddDate(0, 0, toleranceDays))
}

// EntriesMatchingName returns entries whose description contains fragment,
// ascending.
func (v *View) EntriesMatchingName(fragment string, caseInsensitive bool) []model.StatementEntry {
	if v == nil || fragment == "" {
		return nil
	}
	if caseInsensitive {
		fragment = strings.ToLower(fragment)
	}
	var out []model.StatementEntry
	for _, e := range v.entries {
		desc := e.Description
		if caseInsensitive {
			desc = strings.ToLower(desc)
		}
		if strings.Contains(desc, fragment) {
			out = append(out, e)
		}
	}
	return out
}

// MostRecentMatching returns the latest entry whose description matches
// name under the names token rule. Among entries on the same latest day the
// one sorted last wins.
func (v *View) MostRecentMatching(name string) (model.StatementEntry, bool) {
	if v == nil {
		return model.StatementEntry{}, false
	}
	p := names.Compile(name)
	for i := len(v.entries) - 1; i >= 0; i-- {
		if p.Matches(v.entries[i].Description) {
			return v.entries[i], true
		}
	}
	return model.StatementEntry{}, false
}

func clone(entries []model.StatementEntry) []model.StatementEntry {
	out := make([]model.StatementEntry, len(entries))
	copy(out, entries)
	return out
}
