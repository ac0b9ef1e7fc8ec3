package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/comigor/jargone-go/internal/history"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the default level, role and context",
	}

	var showOutput string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := a.profiles.Get(cmd.Context())
			if err != nil {
				return err
			}
			if showOutput == "json" {
				return writeJSON(cmd.OutOrStdout(), prof)
			}
			printProfile(cmd, prof)
			return nil
		},
	}
	show.Flags().StringVarP(&showOutput, "output", "o", "", "Output format (json)")

	var level, role, defaultContext string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update the profile; unset flags keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := a.profiles.Get(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("level") {
				l, err := history.ParseLevel(level)
				if err != nil {
					return err
				}
				prof.ExplanationLevel = l
			}
			if cmd.Flags().Changed("role") {
				prof.UserRole = role
			}
			if cmd.Flags().Changed("context") {
				prof.DefaultContext = defaultContext
			}
			if err := a.profiles.Save(cmd.Context(), prof); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Println("Profile saved")
			printProfile(cmd, prof)
			return nil
		},
	}
	set.Flags().StringVarP(&level, "level", "l", "", "Explanation level: basic, detailed or expert")
	set.Flags().StringVarP(&role, "role", "r", "", "Your role, e.g. engineer")
	set.Flags().StringVarP(&defaultContext, "context", "c", "", "Context added to every query")

	cmd.AddCommand(show, set)
	return cmd
}

func printProfile(cmd *cobra.Command, prof history.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Explanation level: %s\n", prof.ExplanationLevel)
	fmt.Fprintf(out, "Role:              %s\n", orDash(prof.UserRole))
	fmt.Fprintf(out, "Default context:   %s\n", orDash(prof.DefaultContext))
}
