package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/dutyrota/internal/domain/model"
)

func newPeopleCmd(rt *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "people",
		Short: "List and edit the roster",
	}
	cmd.AddCommand(
		newPeopleListCmd(rt),
		newPeopleAddCmd(rt),
		newPeopleEditCmd(rt),
		newPeopleDeleteCmd(rt),
		newPeopleImportCmd(rt),
	)
	return cmd
}

func newPeopleListCmd(rt *session) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the roster in roster order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			people, err := rt.svc.ListPeople(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, people)
			}
			if len(people) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("roster is empty"))
				return nil
			}
			fmt.Fprintln(out, headerStyle.Render("ROSTER"))
			for i, p := range people {
				fmt.Fprintf(out, "%2d. %s  %s\n", i+1, personStyle.Render(p.Name), ruleStyle.Render(joinSlots(p.Eligibility)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newPeopleAddCmd(rt *session) *cobra.Command {
	var slots []string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a person at the end of the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.svc.AddPerson(cmd.Context(), model.Person{Name: args[0], Eligibility: toSlotIDs(slots)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", personStyle.Render(p.Name), ruleStyle.Render(joinSlots(p.Eligibility)))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&slots, "slots", "s", nil, "slots the person can work, e.g. A,B")
	_ = cmd.MarkFlagRequired("slots")
	return cmd
}

func newPeopleEditCmd(rt *session) *cobra.Command {
	var (
		newName string
		slots   []string
	)
	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Rename a person or change their slots",
		Long: `Rename a person or change the slots they can work. A rename is carried
into every slot history. Slots left out of --slots drop the person from
that slot's current cycle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur, err := rt.svc.GetPerson(ctx, args[0])
			if err != nil {
				return err
			}
			next := cur.Clone()
			if cmd.Flags().Changed("name") {
				next.Name = newName
			}
			if cmd.Flags().Changed("slots") {
				next.Eligibility = toSlotIDs(slots)
			}
			p, err := rt.svc.UpdatePerson(ctx, cur.Name, next)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", personStyle.Render(p.Name), ruleStyle.Render(joinSlots(p.Eligibility)))
			return nil
		},
	}
	cmd.Flags().StringVar(&newName, "name", "", "new name")
	cmd.Flags().StringSliceVarP(&slots, "slots", "s", nil, "replacement slot list, e.g. A,C")
	return cmd
}

func newPeopleDeleteCmd(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a person and purge them from every history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.svc.DeletePerson(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", personStyle.Render(args[0]))
			return nil
		},
	}
}

// rosterFile is the YAML shape accepted by people import:
//
//	people:
//	  - name: Alice
//	    eligibility: [A, B]
type rosterFile struct {
	People []struct {
		Name        string   `yaml:"name"`
		Eligibility []string `yaml:"eligibility"`
	} `yaml:"people"`
}

func newPeopleImportCmd(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Append people from a YAML file, in file order",
		Long: `Append people from a YAML file in file order. Use - to read stdin.
Import stops at the first invalid or duplicate entry; people added
before it are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read roster file: %w", err)
			}

			var f rosterFile
			if err := yaml.Unmarshal(data, &f); err != nil {
				return fmt.Errorf("parse roster file: %w", err)
			}
			for i, entry := range f.People {
				p := model.Person{Name: entry.Name, Eligibility: toSlotIDs(entry.Eligibility)}
				if _, err := rt.svc.AddPerson(cmd.Context(), p); err != nil {
					return fmt.Errorf("entry %d (%s): %w", i+1, entry.Name, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d people\n", len(f.People))
			return nil
		},
	}
}

func toSlotIDs(in []string) []model.SlotID {
	out := make([]model.SlotID, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, model.SlotID(s))
		}
	}
	return out
}

func joinSlots(ids []model.SlotID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
