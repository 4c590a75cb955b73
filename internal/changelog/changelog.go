// Package changelog records every field the CLI rewrites in the items file,
// together with the statement entry or reference date behind the new value.
package changelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payday-dev/payday/internal/drift"
	"github.com/payday-dev/payday/internal/model"
)

// RelPath is the change log location inside a workspace.
const RelPath = "logs/changes.csv"

// Fields rewritten by the CLI.
const (
	FieldAnchor  = "anchor"
	FieldNextDue = "next_due"
)

// Change is one rewritten field of one item.
type Change struct {
	At      time.Time
	Command string
	ItemID  string
	Field   string
	Old     string
	New     string

	// Evidence is the statement entry an anchor was moved to. Zero for
	// changes computed from the schedule alone.
	Evidence  model.StatementEntry
	ShiftDays int
	// AsOf is the reference date a next_due value was computed from.
	AsOf time.Time
}

// HasEvidence reports whether the change was taken from a statement entry.
func (c Change) HasEvidence() bool { return c.Evidence.ID != "" }

// AnchorChange records an applied anchor suggestion.
func AnchorChange(s drift.Suggestion, at time.Time) Change {
	return Change{
		At:        at,
		Command:   "anchor",
		ItemID:    s.ItemID,
		Field:     FieldAnchor,
		Old:       formatDay(s.CurrentAnchor),
		New:       formatDay(s.ProposedAnchor),
		Evidence:  s.Entry,
		ShiftDays: s.ShiftDays,
	}
}

// NextDueChange records a stored next_due value.
func NextDueChange(itemID string, prev, next, asOf, at time.Time) Change {
	return Change{
		At:      at,
		Command: "next-due",
		ItemID:  itemID,
		Field:   FieldNextDue,
		Old:     formatDay(prev),
		New:     formatDay(next),
		AsOf:    model.Day(asOf),
	}
}

var columns = []string{
	"recorded_at", "command", "item_id", "field", "old", "new",
	"shift_days", "as_of",
	"entry_id", "entry_date", "entry_amount", "entry_description",
}

// The first six columns must be present in any change log.
var required = columns[:6]

func (c Change) value(col string) string {
	switch col {
	case "recorded_at":
		return c.At.UTC().Format(time.RFC3339)
	case "command":
		return c.Command
	case "item_id":
		return c.ItemID
	case "field":
		return c.Field
	case "old":
		return c.Old
	case "new":
		return c.New
	case "shift_days":
		if !c.HasEvidence() {
			return ""
		}
		return strconv.Itoa(c.ShiftDays)
	case "as_of":
		return formatDay(c.AsOf)
	case "entry_id":
		return c.Evidence.ID
	case "entry_date":
		return formatDay(c.Evidence.Date)
	case "entry_amount":
		if !c.HasEvidence() {
			return ""
		}
		return formatAmount(c.Evidence.Amount)
	case "entry_description":
		return c.Evidence.Description
	}
	return ""
}

func (c *Change) set(col, v string) error {
	var err error
	switch col {
	case "recorded_at":
		c.At, err = time.Parse(time.RFC3339, v)
	case "command":
		c.Command = v
	case "item_id":
		c.ItemID = v
	case "field":
		c.Field = v
	case "old":
		c.Old = v
	case "new":
		c.New = v
	case "shift_days":
		if v != "" {
			c.ShiftDays, err = strconv.Atoi(v)
		}
	case "as_of":
		c.AsOf, err = parseDay(v)
	case "entry_id":
		c.Evidence.ID = v
	case "entry_date":
		c.Evidence.Date, err = parseDay(v)
	case "entry_amount":
		if v != "" {
			c.Evidence.Amount, err = decimal.NewFromString(v)
		}
	case "entry_description":
		c.Evidence.Description = v
	}
	if err != nil {
		return fmt.Errorf("%s %q: %w", col, v, err)
	}
	return nil
}

// Encode writes changes as CSV rows in the column order of header. When
// withHeader is set the header row is written first.
func Encode(w io.Writer, header []string, changes []Change, withHeader bool) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	row := make([]string, len(header))
	for i, c := range changes {
		for j, col := range header {
			row[j] = c.value(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing change %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a change log. Columns are located by header name; unknown
// columns are skipped and missing optional ones stay zero.
func Decode(r io.Reader) ([]Change, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading change log header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var changes []Change
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading change log: %w", err)
		}
		var c Change
		for i, col := range header {
			if err := c.set(col, rec[i]); err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		if seen[col] {
			return fmt.Errorf("change log header repeats column %q", col)
		}
		seen[col] = true
	}
	for _, col := range required {
		if !seen[col] {
			return fmt.Errorf("change log header is missing column %q", col)
		}
	}
	return nil
}

// Log is the change log of one workspace.
type Log struct {
	path string
}

// Open returns the change log under root. The file is created on the first
// Append.
func Open(root string) *Log {
	return &Log{path: filepath.Join(root, filepath.FromSlash(RelPath))}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Append adds changes to the log. Rows follow the existing file's header so
// logs written before a column was added stay readable.
func (l *Log) Append(changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	header, err := l.header()
	if err != nil {
		return err
	}
	fresh := header == nil
	if fresh {
		header = columns
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			return fmt.Errorf("creating logs dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening change log: %w", err)
	}
	if err := Encode(f, header, changes, fresh); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// header returns the existing file's header, or nil when there is no file
// yet.
func (l *Log) header() ([]string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening change log: %w", err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading change log header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	return header, nil
}

// Read returns every recorded change, oldest first, or nil if nothing has
// been logged.
func (l *Log) Read() ([]Change, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening change log: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// ForItem returns the changes recorded for one item, oldest first.
func ForItem(changes []Change, itemID string) []Change {
	var out []Change
	for _, c := range changes {
		if c.ItemID == itemID {
			out = append(out, c)
		}
	}
	return out
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateFormat)
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(s)
}

func formatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
