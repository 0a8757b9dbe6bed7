package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHistoryCmd(rt *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear the rotation history",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show each slot's current cycle and recent assignees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := rt.svc.History(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, h)
			}
			fmt.Fprintln(out, headerStyle.Render("HISTORY"))
			for _, slot := range rt.svc.Slots() {
				sh := h[slot]
				fmt.Fprintf(out, "%s cycle: %s  recent: %s\n",
					slotStyle.Render(string(slot)),
					listOrDash(sh.WorkedCycle),
					listOrDash(sh.LastAssigned),
				)
			}
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear every slot history, keeping the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errConfirm
			}
			if err := rt.svc.ResetHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}
	reset.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")

	cmd.AddCommand(show, reset)
	return cmd
}

var errConfirm = errors.New("refusing to reset without --yes")

func newResetCmd(rt *session) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the roster and the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errConfirm
			}
			if err := rt.svc.ResetAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

func newSlotsCmd(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "Show the configured slots in processing order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(rt.svc.Slots().Strings(), " "))
			return nil
		},
	}
}

func listOrDash(names []string) string {
	if len(names) == 0 {
		return mutedStyle.Render("-")
	}
	return strings.Join(names, ", ")
}
