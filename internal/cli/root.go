// Package cli holds the cobra commands of the sentiment binary.
package cli

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X github.com/comigor/sentiment-go/internal/cli.version=...".
var version = "dev"

// annotationNoConfig marks commands that run without loading configuration.
const annotationNoConfig = "no-config"

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "sentiment",
		Short:         "Darija sentiment analysis front ends",
		Long:          "sentiment sends text to a sentiment classification service and shows the predicted label, per-label confidence and a history of recent analyses, in the browser (serve), the terminal (tui, analyze) or to MCP clients (mcp).",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoConfig] == "true" {
				return nil
			}
			return a.init(cmd.Context(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(a),
		newAnalyzeCmd(a),
		newTUICmd(a),
		newMCPCmd(a),
		newArchiveCmd(a),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version + "\n"))
			return err
		},
	}
}
