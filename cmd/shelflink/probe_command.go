package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"shelflink/internal/catalog"
	"shelflink/internal/hardcover"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var (
		limit       int
		delayMillis int
		fromSources bool
	)

	cmd := &cobra.Command{
		Use:   "probe [isbn13 ...]",
		Short: "Look up ISBNs on the ratings provider and report the hit rate",
		Long: `Look up each ISBN-13 on the external ratings provider. Hits are written
as JSON under the data directory. With --from-sources the stored feed
entries that have no link yet are probed instead of explicit arguments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if cfg.Hardcover.AuthToken == "" {
				return errors.New("hardcover.auth_token is not set (edit the config or export HARDCOVER_AUTH_TOKEN)")
			}
			if len(args) == 0 && !fromSources {
				return errors.New("pass ISBN-13 arguments or use --from-sources")
			}

			isbns := args
			if fromSources {
				err := ctx.withStore(func(store *catalog.Store) error {
					sources, err := store.UnlinkedSources(cmd.Context())
					if err != nil {
						return err
					}
					for _, rec := range sources {
						isbns = append(isbns, rec.ISBN13)
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			if len(isbns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to probe")
				return nil
			}

			client := hardcover.NewClient(hardcover.ClientOptions{
				Endpoint:   cfg.Hardcover.URL,
				Token:      cfg.Hardcover.AuthToken,
				MaxRetries: cfg.Hardcover.MaxRetries,
				Timeout:    time.Duration(cfg.Hardcover.TimeoutSeconds) * time.Second,
			}, logger)

			stats, err := client.Probe(cmd.Context(), isbns, hardcover.ProbeOptions{
				Limit:  limit,
				Delay:  time.Duration(delayMillis) * time.Millisecond,
				HitDir: filepath.Join(cfg.Paths.DataDir, "hardcover"),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Probed %d ISBN(s): %d hits, %d misses (%d lookup errors)\n",
				stats.Probed, stats.Hits, stats.Misses, stats.Errors)
			fmt.Fprintf(out, "Hit rate: %.1f%%\n", stats.HitRate()*100)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 1000, "Maximum ISBNs to look up")
	cmd.Flags().IntVar(&delayMillis, "delay", 400, "Delay between lookups in milliseconds")
	cmd.Flags().BoolVar(&fromSources, "from-sources", false, "Probe the unlinked feed entries from the database")
	return cmd
}
