package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shelflink/internal/feed"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		dateFlag  string
		startFlag string
		endFlag   string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch weekly bestseller snapshots",
		Long: `Fetch bestseller overview snapshots and save the raw JSON under the
snapshot directory, one file per Monday. With no flags the previous week's
Monday is fetched. --start/--end fetch an inclusive weekly range.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if cfg.Feed.APIKey == "" {
				return errors.New("feed.api_key is not set (edit the config or export NYT_API_KEY)")
			}
			if (startFlag == "") != (endFlag == "") {
				return errors.New("--start and --end must be used together")
			}

			start, end := startFlag, endFlag
			if start == "" {
				date := dateFlag
				if date == "" {
					date = feed.LastMondayUTC(time.Now()).Format("2006-01-02")
				}
				start, end = date, date
			}

			client := feed.NewClient(feed.ClientOptions{
				Endpoint:    cfg.Feed.BaseURL,
				APIKey:      cfg.Feed.APIKey,
				SnapshotDir: cfg.Paths.SnapshotDir,
				MaxRetries:  cfg.Feed.MaxRetries,
				Timeout:     time.Duration(cfg.Feed.TimeoutSeconds) * time.Second,
			}, logger)

			overviews, err := client.FetchRange(cmd.Context(), start, end)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var records int
			for _, overview := range overviews {
				records += len(overview.Records())
			}
			fmt.Fprintf(out, "Fetched %d snapshot(s) with %d distinct titles into %s\n",
				len(overviews), records, cfg.Paths.SnapshotDir)
			fmt.Fprintln(out, "Run 'shelflink ingest feed' to load them into the database")
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Fetch exactly one Monday (YYYY-MM-DD; default last Monday UTC)")
	cmd.Flags().StringVar(&startFlag, "start", "", "Range mode: first Monday (inclusive)")
	cmd.Flags().StringVar(&endFlag, "end", "", "Range mode: last Monday (inclusive)")
	return cmd
}
