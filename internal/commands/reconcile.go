package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/model"
)

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	var rng dateRange

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match expected occurrences against imported statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := rng.resolve(time.Now())
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd, opts.repo, true)
			if err != nil {
				return err
			}

			report := ws.engine.Reconcile(ws.items, ws.view, start, end)
			ws.warnItemErrors(report.Errors)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tITEM\tEXPECTED\tSTATUS\tPOSTED\tACTUAL\tDESCRIPTION")
			for _, r := range report.Results {
				posted, actual, desc := "-", "-", ""
				if r.Entry != nil {
					posted = fmt.Sprintf("%s (%+dd)", r.Entry.Date.Format(model.DateFormat), r.DayOffset)
					actual = r.Entry.Amount.StringFixed(2)
					desc = r.Entry.Description
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Occurrence.Date.Format(model.DateFormat),
					ws.itemName(r.Occurrence.ItemID),
					r.Occurrence.Amount.StringFixed(2),
					r.Status, posted, actual, desc)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d matched, %d amount mismatch, %d unmatched, %d item error(s)\n",
				report.Count(model.StatusMatched),
				report.Count(model.StatusAmountMismatch),
				report.Count(model.StatusUnmatched),
				len(report.Errors))
			return nil
		},
	}
	rng.register(cmd)

	return cmd
}
