package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comigor/sentiment-go/internal/archive"
	"github.com/comigor/sentiment-go/internal/prediction"
	"github.com/comigor/sentiment-go/internal/render"
)

var errArchiveDisabled = errors.New("archive is disabled; set archive.path (or SENTIMENT_ARCHIVE_PATH)")

func newArchiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived predictions",
	}
	cmd.AddCommand(newArchiveListCmd(a))
	return cmd
}

func newArchiveListCmd(a *app) *cobra.Command {
	var (
		sessionID string
		limit     int
		since     time.Duration
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived predictions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.archive == nil {
				return errArchiveDisabled
			}

			filter := archive.Filter{SessionID: sessionID, Limit: limit}
			if since > 0 {
				filter.Since = a.now().Add(-since)
			}
			entries, err := a.archive.Query(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list archive: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			results := make([]prediction.Result, 0, len(entries))
			for _, e := range entries {
				results = append(results, e.Result)
			}
			_, err = fmt.Fprintln(out, render.History(results, a.now()))
			return err
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "only this session id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries (0 for all)")
	cmd.Flags().DurationVar(&since, "since", 0, "only entries newer than this age (e.g. 24h)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
