package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"shelflink/internal/catalog"
	"shelflink/internal/feed"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load snapshots and catalog exports into the database",
	}

	ingestCmd.AddCommand(newIngestFeedCommand(ctx))
	ingestCmd.AddCommand(newIngestCatalogCommand(ctx))

	return ingestCmd
}

func newIngestFeedCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed [file|dir ...]",
		Short: "Parse overview snapshots into feed source records",
		Long: `Parse saved overview snapshots and insert one source record per distinct
ISBN-13. With no arguments every snapshot in the configured snapshot
directory is ingested. Records already present are left untouched, so
re-ingesting a snapshot is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			paths, err := snapshotPaths(args, cfg.Paths.SnapshotDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no snapshots found (looked in %s)", cfg.Paths.SnapshotDir)
			}

			return ctx.withWriteLock(func() error {
				return ctx.withStore(func(store *catalog.Store) error {
					out := cmd.OutOrStdout()
					var totalSeen, totalNew int64
					for _, path := range paths {
						overview, err := feed.ReadSnapshot(path)
						if err != nil {
							return err
						}
						records := overview.Records()
						inserted, err := store.InsertSources(cmd.Context(), records)
						if err != nil {
							return fmt.Errorf("snapshot %s: %w", path, err)
						}
						totalSeen += int64(len(records))
						totalNew += inserted
					}
					fmt.Fprintf(out, "Ingested %d snapshot(s): %d records seen, %d new\n",
						len(paths), totalSeen, totalNew)
					return nil
				})
			})
		},
	}
	return cmd
}

func newIngestCatalogCommand(ctx *commandContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "catalog <export.csv[.gz|.zst]> ...",
		Short: "Bulk-load a ratings catalog export",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withWriteLock(func() error {
				return ctx.withStore(func(store *catalog.Store) error {
					// All files load as one batch so the most-ratings dedup
					// holds across chunked exports.
					stats, err := store.LoadCatalogCSV(cmd.Context(), args, reset, logger)
					if err != nil {
						return fmt.Errorf("load catalog: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(),
						"Loaded %d export(s): %d rows read, %d kept after dedup, %d inserted\n",
						len(args), stats.RowsRead, stats.RowsKept, stats.Inserted)
					return nil
				})
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Drop existing catalog rows before loading")
	return cmd
}

func snapshotPaths(args []string, snapshotDir string) ([]string, error) {
	if len(args) == 0 {
		args = []string{snapshotDir}
	}
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read snapshot dir %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
