package cli

import (
	"github.com/spf13/cobra"

	"github.com/comigor/jargone-go/internal/mcpserver"
	"github.com/comigor/jargone-go/internal/relay"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the explain_jargon tool over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			worker := relay.NewWorker(a.explainer(), a.profiles)
			return mcpserver.New(worker).Serve(Version)
		},
	}
}
