package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/comigor/jargone-go/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show or clear past explanations",
	}

	var listOutput string
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved explanations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.history.List(cmd.Context())
			if err != nil {
				return err
			}
			if listOutput == "json" {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				pterm.Info.WithWriter(cmd.ErrOrStderr()).Println("Your search history will appear here")
				return nil
			}
			rows := append([][]string{{"ID", "Time", "Level", "Query"}}, lo.Map(items, func(it history.Item, _ int) []string {
				return []string{
					strconv.FormatInt(it.ID, 10),
					it.Timestamp.Local().Format("2006-01-02 15:04"),
					orDash(it.ExplanationLevel),
					truncate(it.Query, 50),
				}
			})...)
			return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(rows).Render()
		},
	}
	list.Flags().StringVarP(&listOutput, "output", "o", "", "Output format (json)")

	var showOutput string
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved explanation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			item, err := a.history.Find(cmd.Context(), id)
			if err != nil {
				return err
			}
			if showOutput == "json" {
				return writeJSON(cmd.OutOrStdout(), item)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Query: %s\n", item.Query)
			fmt.Fprintf(out, "Time:  %s\n", item.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Level: %s  Role: %s  Context: %s\n\n", orDash(item.ExplanationLevel), orDash(item.UserRole), orDash(item.AdditionalContext))
			fmt.Fprintln(out, item.Explanation)
			return nil
		},
	}
	show.Flags().StringVarP(&showOutput, "output", "o", "", "Output format (json)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved explanations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.history.Clear(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Println("History cleared")
			return nil
		},
	}

	cmd.AddCommand(list, show, clearCmd)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// orDash returns the string if non-empty, otherwise returns "-".
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
