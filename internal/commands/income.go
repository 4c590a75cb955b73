package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/model"
)

func newIncomeCommand(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "income",
		Short: "Compare a month's paycheck deposits with what was expected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := time.Now()
			if month != "" {
				m, err := parseMonth(month)
				if err != nil {
					return err
				}
				ref = m
			}
			ws, err := openWorkspace(cmd, opts.repo, true)
			if err != nil {
				return err
			}

			check := ws.engine.CheckIncome(ws.items, ws.view, ref, ws.cfg.Income.GenericKeywords)
			ws.warnItemErrors(check.Errors)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Month:       %s\n", check.Actual.MonthStart.Format("2006-01"))
			fmt.Fprintf(out, "Deposits:    %s (%d entries, %s)\n",
				check.Actual.Total.StringFixed(2), len(check.Actual.Entries), check.Actual.Source)
			fmt.Fprintf(out, "Expected:    %s (%d paychecks)\n", check.Projected.StringFixed(2), check.Occurrences)
			fmt.Fprintf(out, "Difference:  %s\n", check.Difference.StringFixed(2))
			for _, e := range check.Actual.Entries {
				fmt.Fprintf(out, "  %s  %s  %s\n", e.Date.Format(model.DateFormat), e.Amount.StringFixed(2), e.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to check, YYYY-MM (default current)")

	return cmd
}
