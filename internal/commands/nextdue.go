package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/changelog"
	"github.com/payday-dev/payday/internal/model"
)

func newNextDueCommand(opts *rootOptions) *cobra.Command {
	var asOf string
	var write bool

	cmd := &cobra.Command{
		Use:   "next-due",
		Short: "Show each item's next occurrence on or after a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseAsOf(asOf, time.Now())
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd, opts.repo, false)
			if err != nil {
				return err
			}

			dues, errs := ws.engine.NextDue(ws.items, day)
			ws.warnItemErrors(errs)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM\tNEXT DUE\tIN DAYS")
			next := make(map[string]time.Time, len(dues))
			for _, d := range dues {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", ws.itemName(d.ItemID), d.Date.Format(model.DateFormat), model.DaysBetween(day, d.Date))
				next[d.ItemID] = d.Date
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if !write {
				return nil
			}
			now := time.Now()
			var changes []changelog.Change
			for i := range ws.items {
				it := &ws.items[i]
				d, ok := next[it.ID]
				if !ok || d.Equal(it.NextDue) {
					continue
				}
				changes = append(changes, changelog.NextDueChange(it.ID, it.NextDue, d, day, now))
				it.NextDue = d
			}
			if len(changes) == 0 {
				return nil
			}
			return ws.saveItems(changes)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&write, "write", false, "store the results as next_due in the items file")

	return cmd
}
