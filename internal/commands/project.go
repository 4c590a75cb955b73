package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/model"
)

func newProjectCommand(opts *rootOptions) *cobra.Command {
	var rng dateRange

	cmd := &cobra.Command{
		Use:   "project",
		Short: "List expected occurrences of every item in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := rng.resolve(time.Now())
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd, opts.repo, false)
			if err != nil {
				return err
			}

			occs, errs := ws.engine.Project(ws.items, start, end)
			ws.warnItemErrors(errs)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tITEM\tKIND\tAMOUNT")
			total := model.SumAmounts(occs)
			for _, o := range occs {
				it := ws.itemsByID[o.ItemID]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Date.Format(model.DateFormat), it.Name, it.Kind, o.Amount.StringFixed(2))
			}
			fmt.Fprintf(tw, "\t\tNET\t%s\n", total.StringFixed(2))
			return tw.Flush()
		},
	}
	rng.register(cmd)

	return cmd
}
