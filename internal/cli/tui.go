package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal front end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the alt screen owns the terminal; stderr writes would tear it
			logger.SetOutput(io.Discard)
			return tui.Run(a.registry.Create())
		},
	}
}
