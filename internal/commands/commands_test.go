package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payday-dev/payday/internal/changelog"
	"github.com/payday-dev/payday/internal/commands"
	"github.com/payday-dev/payday/internal/config"
	"github.com/payday-dev/payday/internal/items"
)

const itemsYAML = `items:
  - id: acme
    name: Acme Payroll
    kind: paycheck
    amount: "1200.00"
    frequency: semimonthly
    anchor: 2024-01-01
  - id: rent
    name: Rent
    kind: bill
    amount: "-1500.00"
    frequency: monthly
    anchor: 2024-01-01
  - id: water
    name: Water
    kind: bill
    amount: "-45.00"
    frequency: monthly
    anchor: 2024-01-20
`

const brokenItemYAML = `  - id: broken
    name: Broken
    kind: bill
    amount: "-1"
    frequency: custom
    interval_days: 0
    anchor: 2024-01-01
`

const marchCSV = `id,date,description,amount
p1,2024-03-01,ACME PAYROLL,1200.00
r1,2024-03-02,ONLINE RENT PAYMENT,-1500.00
p2,2024-03-15,ACME PAYROLL,1200.00
w1,2024-03-21,CITY WATER UTIL,-61.20
`

func runPayday(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeWorkspace(t *testing.T, extraItems string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), config.Default()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.yaml"), []byte(itemsYAML+extraItems), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "statements"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "statements", "march.csv"), []byte(marchCSV), 0o644))
	return dir
}

func loadItems(t *testing.T, dir string) map[string]time.Time {
	t.Helper()
	list, rerrs, err := items.Load(filepath.Join(dir, "items.yaml"))
	require.NoError(t, err)
	require.Empty(t, rerrs)
	anchors := make(map[string]time.Time, len(list))
	for _, it := range list {
		anchors[it.ID] = it.AnchorDate
	}
	return anchors
}

func TestVersion(t *testing.T) {
	out, _, err := runPayday(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}

func TestInit_CreatesWorkspace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "budget")
	out, _, err := runPayday(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized payday workspace")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	info, err := os.Stat(filepath.Join(dir, "statements"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	anchors := loadItems(t, dir)
	assert.Len(t, anchors, 2)

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), "statements/")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runPayday(t, "init", dir)
	require.NoError(t, err)

	_, _, err = runPayday(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runPayday(t, "init", dir, "--force")
	require.NoError(t, err)
}

func TestProject(t *testing.T) {
	dir := writeWorkspace(t, "")
	out, _, err := runPayday(t, "project", "--repo", dir, "--from", "2024-03-01", "--to", "2024-03-31")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6, out)
	assert.True(t, strings.HasPrefix(lines[0], "DATE"))
	assert.True(t, strings.HasPrefix(lines[1], "2024-03-01"))
	assert.Contains(t, lines[3], "2024-03-16")
	assert.Contains(t, lines[3], "Acme Payroll")
	assert.Contains(t, lines[4], "Water")
	assert.Contains(t, lines[5], "855.00")
}

func TestProject_BadDate(t *testing.T) {
	dir := writeWorkspace(t, "")
	_, _, err := runPayday(t, "project", "--repo", dir, "--from", "03/01/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from")
}

func TestReconcile(t *testing.T) {
	dir := writeWorkspace(t, brokenItemYAML)
	out, stderr, err := runPayday(t, "reconcile", "--repo", dir, "--month", "2024-03")
	require.NoError(t, err)

	assert.Contains(t, out, "3 matched, 1 amount mismatch, 0 unmatched, 0 item error(s)")
	assert.Contains(t, out, "partial-amount-mismatch")
	assert.Contains(t, out, "2024-03-15 (-1d)")
	assert.Contains(t, out, "-61.20")

	assert.Contains(t, stderr, "skipping item")
	assert.Contains(t, stderr, "broken")
}

func TestReconcile_DotEnvOverride(t *testing.T) {
	dir := writeWorkspace(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PAYDAY_DATE_WINDOW_DAYS=0\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PAYDAY_DATE_WINDOW_DAYS") })

	out, _, err := runPayday(t, "reconcile", "--repo", dir, "--month", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "1 matched, 0 amount mismatch, 3 unmatched")
}

func TestReconcile_MissingConfigUsesDefaults(t *testing.T) {
	dir := writeWorkspace(t, "")
	require.NoError(t, os.Remove(filepath.Join(dir, config.FileName)))

	out, stderr, err := runPayday(t, "reconcile", "--repo", dir, "--month", "2024-03", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "3 matched")
	assert.Contains(t, stderr, "using defaults")
}

func TestReconcile_BadStatementFile(t *testing.T) {
	dir := writeWorkspace(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "statements", "bad.csv"), []byte("date,description,amount\nsoon,x,1\n"), 0o644))

	_, _, err := runPayday(t, "reconcile", "--repo", dir, "--month", "2024-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestIncome(t *testing.T) {
	dir := writeWorkspace(t, "")
	out, _, err := runPayday(t, "income", "--repo", dir, "--month", "2024-03")
	require.NoError(t, err)

	assert.Contains(t, out, "Month:       2024-03")
	assert.Contains(t, out, "Deposits:    2400.00 (2 entries, configured)")
	assert.Contains(t, out, "Expected:    2400.00 (2 paychecks)")
	assert.Contains(t, out, "Difference:  0.00")
}

func TestIncome_EmptyMonth(t *testing.T) {
	dir := writeWorkspace(t, "")
	out, _, err := runPayday(t, "income", "--repo", dir, "--month", "2024-05")
	require.NoError(t, err)
	assert.Contains(t, out, "Deposits:    0.00 (0 entries, none)")
	assert.Contains(t, out, "Difference:  -2400.00")
}

func TestAnchor_Apply(t *testing.T) {
	dir := writeWorkspace(t, "")
	out, _, err := runPayday(t, "anchor", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-15")
	assert.NotContains(t, out, "Updated")
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), loadItems(t, dir)["acme"])

	out, _, err = runPayday(t, "anchor", "--repo", dir, "--apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 3 anchor(s)")

	anchors := loadItems(t, dir)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), anchors["acme"])
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), anchors["rent"])
	assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), anchors["water"])

	changes, err := changelog.Open(dir).Read()
	require.NoError(t, err)
	require.Len(t, changes, 3)
	acme := changes[0]
	assert.Equal(t, "acme", acme.ItemID)
	assert.Equal(t, changelog.FieldAnchor, acme.Field)
	assert.Equal(t, "2024-01-01", acme.Old)
	assert.Equal(t, "2024-03-15", acme.New)
	require.True(t, acme.HasEvidence())
	assert.Equal(t, "ACME PAYROLL", acme.Evidence.Description)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), acme.Evidence.Date)
	assert.Equal(t, "1200.00", acme.Evidence.Amount.StringFixed(2))
	assert.Equal(t, 74, acme.ShiftDays)

	out, _, err = runPayday(t, "history", "--repo", dir, "water")
	require.NoError(t, err)
	assert.Contains(t, out, "Water")
	assert.Contains(t, out, "2024-03-21 -61.20 CITY WATER UTIL (+61 days)")
	assert.NotContains(t, out, "Acme Payroll")
}

func TestAnchor_ApplyRefusesWithInvalidRecords(t *testing.T) {
	dir := writeWorkspace(t, brokenItemYAML)
	before, err := os.ReadFile(filepath.Join(dir, "items.yaml"))
	require.NoError(t, err)

	_, _, err = runPayday(t, "anchor", "--repo", dir, "--apply")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 invalid record")

	after, err := os.ReadFile(filepath.Join(dir, "items.yaml"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNextDue(t *testing.T) {
	dir := writeWorkspace(t, "")
	out, _, err := runPayday(t, "next-due", "--repo", dir, "--as-of", "2024-03-02", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-16")
	assert.Contains(t, out, "2024-04-01")
	assert.Contains(t, out, "2024-03-20")

	list, _, err := items.Load(filepath.Join(dir, "items.yaml"))
	require.NoError(t, err)
	due := map[string]string{}
	for _, it := range list {
		due[it.ID] = it.NextDue.Format("2006-01-02")
	}
	assert.Equal(t, map[string]string{"acme": "2024-03-16", "rent": "2024-04-01", "water": "2024-03-20"}, due)

	changes, err := changelog.Open(dir).Read()
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, changelog.FieldNextDue, changes[1].Field)
	assert.Empty(t, changes[1].Old)
	assert.False(t, changes[1].HasEvidence())
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), changes[1].AsOf)

	// Nothing moved, so a second run leaves the log alone.
	_, _, err = runPayday(t, "next-due", "--repo", dir, "--as-of", "2024-03-02", "--write")
	require.NoError(t, err)
	changes, err = changelog.Open(dir).Read()
	require.NoError(t, err)
	assert.Len(t, changes, 3)

	out, _, err = runPayday(t, "history", "--repo", dir, "rent")
	require.NoError(t, err)
	assert.Contains(t, out, "as of 2024-03-02")
}

func TestHistory_Empty(t *testing.T) {
	dir := writeWorkspace(t, "")
	out, _, err := runPayday(t, "history", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded changes")
}
