package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendwise/internal/core"
	"spendwise/internal/filter"
	"spendwise/internal/form"
	"spendwise/internal/view"
)

func newRecordsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List and manage income and expense records",
	}

	cmd.AddCommand(newRecordsListCommand(e))
	cmd.AddCommand(newRecordsAddCommand(e))
	cmd.AddCommand(newRecordsEditCommand(e))
	cmd.AddCommand(newRecordsDeleteCommand(e))
	cmd.AddCommand(newCategoriesCommand())

	return cmd
}

// newCoordinator builds a coordinator over the HTTP client and mounts it.
func (e *env) newCoordinator(cmd *cobra.Command, confirm func(string) bool) (*view.Coordinator, error) {
	if _, err := e.requireUser(); err != nil {
		return nil, err
	}
	c := view.NewCoordinator(e.client, e.notices, e.sessions, view.Options{
		CloseModalOnError: e.cfg.CloseModalOnError,
		Confirm:           confirm,
	})
	if err := c.Start(cmd.Context()); err != nil {
		return nil, err
	}
	if c.State() == view.StateUnauthenticated {
		return nil, fmt.Errorf("not logged in: run 'spendwise-cli login' first")
	}
	return c, nil
}

func parseRecordType(s string) (core.RecordType, error) {
	t := core.RecordType(s)
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("invalid type %q: must be %q or %q", s, core.Income, core.Expense)
	}
	return t, nil
}

func newRecordsListCommand(e *env) *cobra.Command {
	var (
		typeFlag string
		search   string
		operator string
		amount   string
		from     string
		to       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.newCoordinator(cmd, nil)
			if err != nil {
				return err
			}

			types := []core.RecordType{core.Income, core.Expense}
			if typeFlag != "all" {
				t, err := parseRecordType(typeFlag)
				if err != nil {
					return err
				}
				types = []core.RecordType{t}
			}

			for _, t := range types {
				c.SetSearch(t, search)
				c.SetAmountFilter(t, filter.AmountFilter{Operator: filter.Operator(operator), Amount: amount})
				c.SetDateFilter(t, filter.DateFilter{Start: from, End: to})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tDATE\tNAME\tCATEGORY\tAMOUNT\tDESCRIPTION")
			for _, t := range types {
				for _, r := range c.View(t) {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						r.ID, r.Type, form.FormatForInput(r.DateTime), r.Name, r.Category, r.Amount, r.Description)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "all", "record type: income, expense or all")
	cmd.Flags().StringVar(&search, "search", "", "substring match on name or category")
	cmd.Flags().StringVar(&operator, "operator", string(filter.OpGreater), "amount comparison: >, <, >= or <=")
	cmd.Flags().StringVar(&amount, "amount", "", "amount threshold (empty disables the amount filter)")
	cmd.Flags().StringVar(&from, "from", "", "earliest timestamp to include")
	cmd.Flags().StringVar(&to, "to", "", "latest timestamp to include")

	return cmd
}

// applyDraftFlags copies set flags into the open modal's draft.
func applyDraftFlags(cmd *cobra.Command, c *view.Coordinator) {
	for flag, field := range map[string]string{
		"name":        form.FieldName,
		"category":    form.FieldCategory,
		"amount":      form.FieldAmount,
		"description": form.FieldDescription,
		"date":        form.FieldDateTime,
	} {
		if cmd.Flags().Changed(flag) {
			value, _ := cmd.Flags().GetString(flag)
			c.SetDraftField(field, value)
		}
	}
}

func addDraftFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "record name")
	cmd.Flags().String("category", "", "record category")
	cmd.Flags().String("amount", "", "record amount")
	cmd.Flags().String("description", "", "free-text description")
	cmd.Flags().String("date", "", "timestamp, e.g. 2026-08-28T12:30")
}

func newRecordsAddCommand(e *env) *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseRecordType(typeFlag)
			if err != nil {
				return err
			}
			c, err := e.newCoordinator(cmd, nil)
			if err != nil {
				return err
			}

			c.OpenCreate(t)
			applyDraftFlags(cmd, c)
			return c.Submit(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "record type: income or expense (required)")
	_ = cmd.MarkFlagRequired("type")
	addDraftFlags(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newRecordsEditCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update fields of an existing record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid record id %q", args[0])
			}
			c, err := e.newCoordinator(cmd, nil)
			if err != nil {
				return err
			}

			rec, ok := findRecord(c.Records(), id)
			if !ok {
				return fmt.Errorf("record %d not found", id)
			}

			c.OpenEdit(rec)
			applyDraftFlags(cmd, c)
			return c.Submit(cmd.Context())
		},
	}

	addDraftFlags(cmd)
	return cmd
}

func newRecordsDeleteCommand(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid record id %q", args[0])
			}

			confirm := confirmOnTerminal
			if yes {
				confirm = func(string) bool { return true }
			}
			c, err := e.newCoordinator(cmd, confirm)
			if err != nil {
				return err
			}

			rec, ok := findRecord(c.Records(), id)
			if !ok {
				return fmt.Errorf("record %d not found", id)
			}

			c.OpenEdit(rec)
			return c.Delete(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the category catalog per record type",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range []core.RecordType{core.Income, core.Expense} {
				for _, cat := range core.Categories(t) {
					fmt.Fprintf(w, "%s\t%s\n", t, cat)
				}
			}
			return w.Flush()
		},
	}
}

func findRecord(records []core.Record, id int64) (core.Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return core.Record{}, false
}
