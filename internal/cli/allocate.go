package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/dutyrota/internal/domain/types"
)

func newAllocateCmd(rt *session) *cobra.Command {
	var (
		req    types.AllocateRequest
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Run today's allocation and save the new history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			alloc, err := rt.svc.Allocate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), alloc)
			}
			printAllocation(cmd.OutOrStdout(), alloc)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&req.Absent, "absent", "a", nil, "people unavailable today, e.g. Bob,Carol")
	cmd.Flags().StringVar(&req.RequestID, "request-id", "", "idempotency key for this run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printAllocation(out io.Writer, a types.Allocation) {
	title := "ALLOCATION " + a.At.Format("2006-01-02 15:04")
	if a.Replayed {
		title += " (replayed)"
	}
	fmt.Fprintln(out, headerStyle.Render(title))
	for _, as := range a.Assignments {
		if as.Unfilled {
			fmt.Fprintf(out, "%s %s\n", slotStyle.Render(string(as.Slot)), warningStyle.Render("unfilled"))
			continue
		}
		fmt.Fprintf(out, "%s %s %s\n", slotStyle.Render(string(as.Slot)), personStyle.Render(as.Person), ruleStyle.Render(string(as.Rule)))
	}
	for _, w := range a.Warnings {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("warning: slot %s: %s", w.Slot, w.Message)))
	}
	fmt.Fprintln(out, mutedStyle.Render("run "+a.RunID))
}
