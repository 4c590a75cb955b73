package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/changelog"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [item-id]",
		Short: "Show recorded edits to the items file and what each was based on",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts.repo, false)
			if err != nil {
				return err
			}

			changes, err := changelog.Open(ws.root).Read()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				changes = changelog.ForItem(changes, args[0])
			}
			if len(changes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded changes")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RECORDED\tITEM\tFIELD\tOLD\tNEW\tBASED ON")
			for _, c := range changes {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.At.Local().Format(time.DateTime), ws.itemName(c.ItemID),
					c.Field, orDash(c.Old), orDash(c.New), basis(c))
			}
			return tw.Flush()
		},
	}

	return cmd
}

func basis(c changelog.Change) string {
	switch {
	case c.HasEvidence():
		return fmt.Sprintf("%s %s %s (%+d days)",
			formatDate(c.Evidence.Date), c.Evidence.Amount.StringFixed(2), c.Evidence.Description, c.ShiftDays)
	case !c.AsOf.IsZero():
		return "as of " + formatDate(c.AsOf)
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
