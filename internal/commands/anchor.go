package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/payday-dev/payday/internal/changelog"
	"github.com/payday-dev/payday/internal/drift"
	"github.com/payday-dev/payday/internal/model"
	"github.com/payday-dev/payday/internal/schedule"
)

func newAnchorCommand(opts *rootOptions) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Suggest anchor dates from the latest matching statement entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts.repo, true)
			if err != nil {
				return err
			}

			suggestions, errs := ws.engine.SuggestAnchors(ws.items, ws.view)
			ws.warnItemErrors(errs)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM\tCURRENT\tPROPOSED\tSHIFT\tON SCHEDULE\tENTRY")
			proposed := make(map[string]drift.Suggestion)
			for _, s := range suggestions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%+d\t%t\t%s\n",
					ws.itemName(s.ItemID),
					s.CurrentAnchor.Format(model.DateFormat),
					s.ProposedAnchor.Format(model.DateFormat),
					s.ShiftDays, s.OnSchedule, s.Entry.Description)
				if s.Changed() {
					proposed[s.ItemID] = s
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if !apply || len(proposed) == 0 {
				return nil
			}

			now := time.Now()
			var changes []changelog.Change
			for i, it := range ws.items {
				s, ok := proposed[it.ID]
				if !ok {
					continue
				}
				it.AnchorDate = s.ProposedAnchor
				if err := schedule.RuleFor(it, ws.engine.Pairing()).Validate(); err != nil {
					ws.log.Warn().Str("item_id", it.ID).Err(err).Msg("proposed anchor rejected")
					continue
				}
				ws.items[i] = it
				changes = append(changes, changelog.AnchorChange(s, now))
			}
			if len(changes) == 0 {
				return nil
			}
			if err := ws.saveItems(changes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d anchor(s)\n", len(changes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "write changed anchors back to the items file")

	return cmd
}
