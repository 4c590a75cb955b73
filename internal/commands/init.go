package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/config"
	"github.com/payday-dev/payday/internal/items"
	"github.com/payday-dev/payday/internal/model"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new payday workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized payday workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing payday.yaml and items file")

	return cmd
}

func runInit(dir string, force bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	cfg := config.Default()
	if err := os.MkdirAll(filepath.Join(dir, cfg.Sources.StatementsDir), 0o755); err != nil {
		return fmt.Errorf("creating statements dir: %w", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	if err := items.Save(cfg.ItemsPath(dir), sampleItems()); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}

	gitignore := "statements/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}

func sampleItems() []model.RecurringItem {
	return []model.RecurringItem{
		{
			ID:         "paycheck",
			Name:       "Employer Payroll",
			Kind:       model.KindPaycheck,
			Amount:     decimal.RequireFromString("2000.00"),
			Frequency:  model.Frequency{Kind: model.FrequencySemimonthly},
			AnchorDate: model.Date(2024, 1, 1),
		},
		{
			ID:         "rent",
			Name:       "Rent",
			Kind:       model.KindBill,
			Amount:     decimal.RequireFromString("-1500.00"),
			Frequency:  model.Frequency{Kind: model.FrequencyMonthly},
			AnchorDate: model.Date(2024, 1, 1),
		},
	}
}
