package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/changelog"
	"github.com/payday-dev/payday/internal/config"
	"github.com/payday-dev/payday/internal/importer"
	"github.com/payday-dev/payday/internal/items"
	"github.com/payday-dev/payday/internal/ledger"
	"github.com/payday-dev/payday/internal/logger"
	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/reconcile"
)

// workspace is everything a command reads from the repo directory.
type workspace struct {
	root      string
	cfg       *config.Config
	items     []model.RecurringItem
	badItems  int
	view      *ledger.View
	engine    *reconcile.Engine
	log       zerolog.Logger
	itemsByID map[string]model.RecurringItem
}

func openWorkspace(cmd *cobra.Command, repo string, withLedger bool) (*workspace, error) {
	root, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	log := logger.FromContext(cmd.Context())

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("root", root).Msg("no payday.yaml, using defaults")
		cfg = config.Default()
	case err != nil:
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	itemsPath := cfg.ItemsPath(root)
	list, rerrs, err := items.Load(itemsPath)
	if err != nil {
		return nil, err
	}
	for _, re := range rerrs {
		log.Warn().Str("item_id", re.ItemID).Int("record", re.Index+1).Err(re.Err).Msg("skipping item")
	}
	log.Debug().Str("path", itemsPath).Int("items", len(list)).Int("invalid", len(rerrs)).Msg("loaded items")

	ws := &workspace{
		root:      root,
		cfg:       cfg,
		items:     list,
		badItems:  len(rerrs),
		engine:    reconcile.New(cfg.MatcherOptions(), cfg.Pairing()),
		log:       log,
		itemsByID: make(map[string]model.RecurringItem, len(list)),
	}
	for _, it := range list {
		ws.itemsByID[it.ID] = it
	}

	if withLedger {
		dir := cfg.StatementsPath(root)
		entries, err := importer.LoadDir(cmd.Context(), importer.DefaultRegistry(), dir, cfg.Sources.StatementFormat, cfg.Sources.Account)
		if err != nil {
			return nil, fmt.Errorf("loading statements: %w", err)
		}
		ws.view = ledger.NewView(entries)
		log.Debug().Str("dir", dir).Int("entries", ws.view.Len()).Msg("loaded statements")
	}
	return ws, nil
}

func (w *workspace) warnItemErrors(errs []reconcile.ItemError) {
	for _, e := range errs {
		w.log.Warn().Str("item_id", e.ItemID).Err(e.Err).Msg("item skipped")
	}
}

// saveItems writes the items file back and records changes in the change
// log. Records that failed to parse would be dropped by a rewrite, so it
// refuses while any exist.
func (w *workspace) saveItems(changes []changelog.Change) error {
	if w.badItems > 0 {
		return fmt.Errorf("items file has %d invalid record(s); fix them before writing", w.badItems)
	}
	path := w.cfg.ItemsPath(w.root)
	if err := items.Save(path, w.items); err != nil {
		return err
	}
	w.log.Info().Str("path", path).Int("changes", len(changes)).Msg("updated items file")

	if err := changelog.Open(w.root).Append(changes); err != nil {
		w.log.Warn().Err(err).Msg("failed to write change log")
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateFormat)
}

func (w *workspace) itemName(id string) string {
	if it, ok := w.itemsByID[id]; ok {
		return it.Name
	}
	return id
}

// dateRange holds the --from/--to/--month flags shared by the reporting
// commands. With nothing set it covers the current month.
type dateRange struct {
	from  string
	to    string
	month string
}

func (r *dateRange) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.month, "month", "", "whole month, YYYY-MM (overrides --from/--to)")
}

func (r *dateRange) resolve(now time.Time) (time.Time, time.Time, error) {
	if r.month != "" {
		m, err := parseMonth(r.month)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start, end := model.MonthBounds(m)
		return start, end, nil
	}

	start, end := model.MonthBounds(now)
	var err error
	if r.from != "" {
		if start, err = model.ParseDate(r.from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
	}
	if r.to != "" {
		if end, err = model.ParseDate(r.to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
	}
	return start, end, nil
}

func parseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	return t, nil
}

func parseAsOf(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return model.Day(now), nil
	}
	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of: %w", err)
	}
	return t, nil
}
