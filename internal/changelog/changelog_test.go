package changelog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payday-dev/payday/internal/drift"
	"github.com/payday-dev/payday/internal/model"
)

var recordedAt = time.Date(2024, 3, 22, 9, 15, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func rentSuggestion() drift.Suggestion {
	return drift.Suggestion{
		ItemID:         "rent",
		CurrentAnchor:  day(2024, 1, 1),
		ProposedAnchor: day(2024, 3, 2),
		Entry: model.StatementEntry{
			ID:          "r1",
			Date:        day(2024, 3, 2),
			Description: "ONLINE RENT PAYMENT, APT 4",
			Amount:      decimal.RequireFromString("-1500.00"),
			Account:     "checking",
		},
		ShiftDays: 61,
	}
}

func TestAnchorChange(t *testing.T) {
	c := AnchorChange(rentSuggestion(), recordedAt)
	assert.Equal(t, "anchor", c.Command)
	assert.Equal(t, FieldAnchor, c.Field)
	assert.Equal(t, "2024-01-01", c.Old)
	assert.Equal(t, "2024-03-02", c.New)
	assert.Equal(t, "r1", c.Evidence.ID)
	assert.Equal(t, 61, c.ShiftDays)
	assert.True(t, c.HasEvidence())
	assert.True(t, c.AsOf.IsZero())
}

func TestNextDueChange(t *testing.T) {
	c := NextDueChange("water", time.Time{}, day(2024, 3, 20), time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC), recordedAt)
	assert.Equal(t, "next-due", c.Command)
	assert.Equal(t, FieldNextDue, c.Field)
	assert.Empty(t, c.Old)
	assert.Equal(t, "2024-03-20", c.New)
	assert.Equal(t, day(2024, 3, 2), c.AsOf)
	assert.False(t, c.HasEvidence())
}

func TestLog_AppendAndRead(t *testing.T) {
	root := t.TempDir()
	log := Open(root)
	assert.Equal(t, filepath.Join(root, "logs", "changes.csv"), log.Path())

	require.NoError(t, log.Append([]Change{AnchorChange(rentSuggestion(), recordedAt)}))
	require.NoError(t, log.Append([]Change{
		NextDueChange("rent", time.Time{}, day(2024, 4, 2), day(2024, 3, 22), recordedAt.Add(time.Minute)),
	}))

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "recorded_at"), "header written once")

	changes, err := log.Read()
	require.NoError(t, err)
	require.Len(t, changes, 2)

	anchor := changes[0]
	assert.Equal(t, recordedAt, anchor.At)
	assert.Equal(t, "2024-03-02", anchor.New)
	assert.Equal(t, "r1", anchor.Evidence.ID)
	assert.Equal(t, day(2024, 3, 2), anchor.Evidence.Date)
	assert.Equal(t, "ONLINE RENT PAYMENT, APT 4", anchor.Evidence.Description)
	assert.Equal(t, "-1500.00", anchor.Evidence.Amount.StringFixed(2))
	assert.Equal(t, 61, anchor.ShiftDays)
	assert.Empty(t, anchor.Evidence.Account, "account is not recorded")

	due := changes[1]
	assert.Equal(t, FieldNextDue, due.Field)
	assert.Equal(t, day(2024, 3, 22), due.AsOf)
	assert.False(t, due.HasEvidence())
	assert.True(t, due.Evidence.Amount.IsZero())
}

func TestLog_AppendNothing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Open(root).Append(nil))
	_, err := os.Stat(filepath.Join(root, "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestLog_ReadMissing(t *testing.T) {
	changes, err := Open(t.TempDir()).Read()
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestLog_AppendFollowsExistingHeader(t *testing.T) {
	root := t.TempDir()
	log := Open(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(log.Path()), 0o755))
	older := "recorded_at,command,item_id,field,old,new\n" +
		"2024-01-05T08:00:00Z,anchor,gym,anchor,2023-12-01,2024-01-03\n"
	require.NoError(t, os.WriteFile(log.Path(), []byte(older), 0o644))

	require.NoError(t, log.Append([]Change{AnchorChange(rentSuggestion(), recordedAt)}))

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-03-22T09:15:00Z,anchor,rent,anchor,2024-01-01,2024-03-02", lines[2])

	changes, err := log.Read()
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "gym", changes[0].ItemID)
	assert.False(t, changes[0].HasEvidence())
}

func TestLog_AppendRejectsForeignFile(t *testing.T) {
	root := t.TempDir()
	log := Open(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(log.Path()), 0o755))
	require.NoError(t, os.WriteFile(log.Path(), []byte("date,amount\n2024-01-01,5\n"), 0o644))

	err := log.Append([]Change{AnchorChange(rentSuggestion(), recordedAt)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "recorded_at"`)
}

func TestDecode_ColumnsByName(t *testing.T) {
	in := "entry_description,new,item_id,old,field,command,recorded_at,entry_id,note\n" +
		"ACME PAYROLL,2024-03-15,acme,2024-01-01,anchor,anchor,2024-03-22T09:15:00Z,p2,ignored\n"
	changes, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "acme", changes[0].ItemID)
	assert.Equal(t, "2024-03-15", changes[0].New)
	assert.Equal(t, "p2", changes[0].Evidence.ID)
	assert.Equal(t, "ACME PAYROLL", changes[0].Evidence.Description)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"repeated column", "recorded_at,command,item_id,field,old,new,old\n", `repeats column "old"`},
		{"bad timestamp", "recorded_at,command,item_id,field,old,new\nyesterday,anchor,rent,anchor,,\n", "row 2: recorded_at"},
		{"bad shift", "recorded_at,command,item_id,field,old,new,shift_days\n2024-03-22T09:15:00Z,anchor,rent,anchor,,,soon\n", "shift_days"},
		{"short row", "recorded_at,command,item_id,field,old,new\n2024-03-22T09:15:00Z,anchor\n", "reading change log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	changes, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestEncode_UTCAndQuoting(t *testing.T) {
	c := AnchorChange(rentSuggestion(), recordedAt.In(time.FixedZone("EST", -5*3600)))
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, columns, []Change{c}, false))
	assert.Equal(t,
		"2024-03-22T09:15:00Z,anchor,rent,anchor,2024-01-01,2024-03-02,61,,r1,2024-03-02,-1500.00,\"ONLINE RENT PAYMENT, APT 4\"\n",
		buf.String())
}

func TestForItem(t *testing.T) {
	changes := []Change{
		{ItemID: "rent", New: "a"},
		{ItemID: "water", New: "b"},
		{ItemID: "rent", New: "c"},
	}
	got := ForItem(changes, "rent")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].New)
	assert.Equal(t, "c", got[1].New)
	assert.Empty(t, ForItem(changes, "gym"))
}
