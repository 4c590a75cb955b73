// Package items reads and writes the recurring items file. It is the only
// place raw item records are seen; everything downstream receives validated
// model.RecurringItem values.
package items

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/schedule"
)

// File is the on-disk layout of items.yaml.
type File struct {
	Items []Record `yaml:"items"`
}

// Record is one item as written by hand. Amount is kept as text so it
// reaches decimal parsing without passing through a float.
type Record struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Kind            string `yaml:"kind"`
	Amount          string `yaml:"amount"`
	Frequency       string `yaml:"frequency"`
	IntervalDays    int    `yaml:"interval_days,omitempty"`
	Anchor          string `yaml:"anchor"`
	NextDue         string `yaml:"next_due,omitempty"`
	SemimonthlyDays []int  `yaml:"semimonthly_days,omitempty,flow"`
}

// RecordError reports a record that could not become an item.
type RecordError struct {
	Index  int // zero-based position in the file
	ItemID string
	Err    error
}

func (e RecordError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("item #%d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("item #%d (%s): %v", e.Index+1, e.ItemID, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

var kinds = map[string]model.ItemKind{
	string(model.KindBill):     model.KindBill,
	string(model.KindPaycheck): model.KindPaycheck,
	string(model.KindTransfer): model.KindTransfer,
	string(model.KindGoal):     model.KindGoal,
}

// Read parses an items file. Malformed records are returned as
// RecordErrors next to the items that parsed; err is only set when the
// document itself is unreadable.
func Read(r io.Reader) ([]model.RecurringItem, []RecordError, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("parsing items: %w", err)
	}

	var out []model.RecurringItem
	var rerrs []RecordError
	seen := make(map[string]bool, len(f.Items))
	for i, rec := range f.Items {
		it, err := UnmarshalItem(rec)
		if err == nil && seen[it.ID] {
			err = &schedule.ConfigError{ItemID: it.ID, Field: "id", Reason: "duplicate"}
		}
		if err != nil {
			rerrs = append(rerrs, RecordError{Index: i, ItemID: strings.TrimSpace(rec.ID), Err: err})
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out, rerrs, nil
}

// Load reads an items file from disk.
func Load(path string) ([]model.RecurringItem, []RecordError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening items: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes items in file order.
func Write(w io.Writer, list []model.RecurringItem) error {
	f := File{Items: make([]Record, len(list))}
	for i, it := range list {
		f.Items[i] = MarshalItem(it)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}
	return enc.Close()
}

// Save writes items to path. The file is written beside path and renamed
// into place, so a failed write leaves the previous file intact.
func Save(path string, list []model.RecurringItem) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".items-*.yaml")
	if err != nil {
		return fmt.Errorf("creating items file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, list); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting items file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing items file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing items file: %w", err)
	}
	return nil
}

// MarshalItem converts an item to its record form.
func MarshalItem(it model.RecurringItem) Record {
	rec := Record{
		ID:           it.ID,
		Name:         it.Name,
		Kind:         string(it.Kind),
		Amount:       formatAmount(it.Amount),
		Frequency:    string(it.Frequency.Kind),
		IntervalDays: it.Frequency.IntervalDays,
		Anchor:       it.AnchorDate.Format(model.DateFormat),
	}
	if !it.NextDue.IsZero() {
		rec.NextDue = it.NextDue.Format(model.DateFormat)
	}
	if it.HasFixedSemimonthlyDays() {
		rec.SemimonthlyDays = []int{it.SemimonthlyDays[0], it.SemimonthlyDays[1]}
	}
	return rec
}

// formatAmount writes at least two decimal places and never drops digits
// the amount already has.
func formatAmount(d decimal.Decimal) string {
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}

// UnmarshalItem validates a record. Every error wraps
// schedule.ErrInvalidConfiguration.
func UnmarshalItem(rec Record) (model.RecurringItem, error) {
	id := strings.TrimSpace(rec.ID)
	fail := func(field, format string, args ...any) (model.RecurringItem, error) {
		return model.RecurringItem{}, &schedule.ConfigError{ItemID: id, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if id == "" {
		return fail("id", "missing")
	}
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return fail("name", "missing")
	}

	kind, ok := kinds[strings.ToLower(strings.TrimSpace(rec.Kind))]
	if !ok {
		return fail("kind", "unknown kind %q", rec.Kind)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec.Amount))
	if err != nil {
		return fail("amount", "cannot parse %q", rec.Amount)
	}

	freq, err := schedule.ParseFrequency(rec.Frequency, rec.IntervalDays)
	if err != nil {
		return model.RecurringItem{}, schedule.WithItem(err, id)
	}

	anchor, err := model.ParseDate(strings.TrimSpace(rec.Anchor))
	if err != nil {
		return fail("anchor", "malformed date %q", rec.Anchor)
	}

	it := model.RecurringItem{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Amount:     amount,
		Frequency:  freq,
		AnchorDate: anchor,
	}

	if rec.NextDue != "" {
		if it.NextDue, err = model.ParseDate(strings.TrimSpace(rec.NextDue)); err != nil {
			return fail("next_due", "malformed date %q", rec.NextDue)
		}
	}

	switch len(rec.SemimonthlyDays) {
	case 0:
	case 2:
		if freq.Kind != model.FrequencySemimonthly {
			return fail("semimonthly_days", "only valid for semimonthly items")
		}
		it.SemimonthlyDays = [2]int{rec.SemimonthlyDays[0], rec.SemimonthlyDays[1]}
	default:
		return fail("semimonthly_days", "need exactly 2 days, got %d", len(rec.SemimonthlyDays))
	}

	if err := schedule.RuleFor(it, nil).Validate(); err != nil {
		return model.RecurringItem{}, schedule.WithItem(err, id)
	}
	return it, nil
}
