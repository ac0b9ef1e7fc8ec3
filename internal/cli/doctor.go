package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/comigor/jargone-go/internal/config"
	"github.com/comigor/jargone-go/internal/storage"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that storage works and print the active configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider:  %s\n", a.cfg.Provider.Name)
			if a.cfg.Provider.Name == config.ProviderOpenAI {
				fmt.Fprintf(out, "Model:     %s (%s)\n", a.cfg.LLM.Model, a.cfg.LLM.BaseURL)
			} else {
				fmt.Fprintf(out, "Service:   %s\n", a.cfg.Service.URL)
			}
			fmt.Fprintf(out, "Storage:   %s\n", a.cfg.Storage.Path)

			if _, ok := a.kv.(*storage.Memory); ok {
				pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println("Storage fell back to memory; nothing will be kept after exit")
			}
			if err := storage.SelfTest(cmd.Context(), a.kv); err != nil {
				return fmt.Errorf("storage not working properly: %w", err)
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Println("Storage self-test passed")
			return nil
		},
	}
}
