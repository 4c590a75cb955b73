// Package income totals the paycheck deposits that actually landed in a
// calendar month.
package income

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payday-dev/payday/internal/ledger"
	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/names"
)

// DefaultKeywords drive the generic paycheck classifier.
var DefaultKeywords = []string{"payroll", "direct dep", "salary", "paycheck"}

// Source says which classifier selected a month's deposits.
type Source string

const (
	SourceNone       Source = "none"
	SourceConfigured Source = "configured"
	SourceGeneric    Source = "generic"
)

// Classifier recognizes paycheck deposits, first by configured paycheck
// names and otherwise by generic keywords.
type Classifier struct {
	paychecks []names.Pattern
	keywords  []string
}

// NewClassifier compiles the configured paycheck names and keywords.
// Keywords are matched as substrings of the normalized description.
func NewClassifier(paycheckNames, keywords []string) Classifier {
	c := Classifier{}
	for _, n := range paycheckNames {
		if p := names.Compile(n); !p.Empty() {
			c.paychecks = append(c.paychecks, p)
		}
	}
	for _, k := range keywords {
		if k = normalize(k); k != "" {
			c.keywords = append(c.keywords, k)
		}
	}
	return c
}

// Configured reports whether description matches a configured paycheck.
func (c Classifier) Configured(description string) bool {
	for _, p := range c.paychecks {
		if p.Matches(description) {
			return true
		}
	}
	return false
}

// Generic reports whether description looks like payroll.
func (c Classifier) Generic(description string) bool {
	desc := " " + normalize(description) + " "
	for _, k := range c.keywords {
		if strings.Contains(desc, " "+k) {
			return true
		}
	}
	return false
}

// Summary is one month's actual paycheck income.
type Summary struct {
	MonthStart time.Time
	MonthEnd   time.Time
	Total      decimal.Decimal
	Entries    []model.StatementEntry
	Source     Source
}

// Summarize collects the deposits in the month containing ref that the
// classifier recognizes. Configured names are tried first; the generic
// keywords are used only if no deposit that month matches a configured name.
func Summarize(view *ledger.View, ref time.Time, c Classifier) Summary {
	start, end := model.MonthBounds(ref)
	s := Summary{MonthStart: start, MonthEnd: end, Total: decimal.Zero, Source: SourceNone}

	var deposits []model.StatementEntry
	for _, e := range view.Between(start, end) {
		if e.IsDeposit() {
			deposits = append(deposits, e)
		}
	}

	s.Entries = filter(deposits, c.Configured)
	if len(s.Entries) > 0 {
		s.Source = SourceConfigured
	} else if s.Entries = filter(deposits, c.Generic); len(s.Entries) > 0 {
		s.Source = SourceGeneric
	}

	for _, e := range s.Entries {
		s.Total = s.Total.Add(e.Amount)
	}
	return s
}

// PaycheckDepositsForMonth returns the total paycheck deposits in the month
// containing ref. An empty ledger yields zero.
func PaycheckDepositsForMonth(view *ledger.View, ref time.Time, c Classifier) decimal.Decimal {
	return Summarize(view, ref, c).Total
}

func filter(entries []model.StatementEntry, keep func(string) bool) []model.StatementEntry {
	var out []model.StatementEntry
	for _, e := range entries {
		if keep(e.Description) {
			out = append(out, e)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), " ")
}
