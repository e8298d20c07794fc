package cli

import (
	"github.com/spf13/cobra"

	"github.com/comigor/sentiment-go/internal/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve analyze_sentiment and sentiment_history as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.New(a.registry.Create(), version).ServeStdio()
		},
	}
}
