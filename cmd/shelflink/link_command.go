package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shelflink/internal/catalog"
	"shelflink/internal/linkage"
)

const timeRounding = 10 * time.Millisecond

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var (
		stage1        int
		stage2        int
		maxCandidates int
		useSeries     bool
		showMisses    bool
		workers       int
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Run the two-stage fuzzy linkage over unlinked feed entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			engineCfg := linkage.Config{
				Stage1Threshold: cfg.Matching.Stage1Threshold,
				Stage2Threshold: cfg.Matching.Stage2Threshold,
				MaxCandidates:   cfg.Matching.MaxCandidates,
				UseSeries:       cfg.Matching.UseSeries,
				Workers:         cfg.Matching.Workers,
			}
			if cmd.Flags().Changed("stage1") {
				engineCfg.Stage1Threshold = stage1
			}
			if cmd.Flags().Changed("stage2") {
				engineCfg.Stage2Threshold = stage2
			}
			if cmd.Flags().Changed("max-candidates") {
				engineCfg.MaxCandidates = maxCandidates
			}
			if cmd.Flags().Changed("use-series") {
				engineCfg.UseSeries = useSeries
			}
			if cmd.Flags().Changed("workers") {
				engineCfg.Workers = workers
			}
			diagnostics := cfg.Matching.ShowMisses
			if cmd.Flags().Changed("show-misses") {
				diagnostics = showMisses
			}

			return ctx.withWriteLock(func() error {
				return ctx.withStore(func(store *catalog.Store) error {
					out := cmd.OutOrStdout()

					sources, err := store.UnlinkedSources(cmd.Context())
					if err != nil {
						return err
					}
					if len(sources) == 0 {
						fmt.Fprintln(out, "Nothing to link: every feed entry is resolved or already linked")
						return nil
					}

					engine := linkage.NewEngine(store, engineCfg, logger)
					report, err := engine.Run(cmd.Context(), sources)
					if err != nil {
						return err
					}

					runID := uuid.NewString()
					inserted, err := store.InsertLinks(cmd.Context(), runID, report.Links)
					if err != nil {
						return err
					}

					counts := report.StageCounts()
					fmt.Fprintf(out, "%d matches (blocked %d | fallback %d) in %s\n",
						counts.Total(), counts.Blocked, counts.Fallback, report.Elapsed.Round(timeRounding))
					if skipped := int64(len(report.Links)) - inserted; skipped > 0 {
						fmt.Fprintf(out, "%d of those were already linked and left untouched\n", skipped)
					}
					fmt.Fprintf(out, "%d entries unmatched\n", len(report.Unmatched))

					if diagnostics {
						printDiagnostics(out, report)
					}
					return nil
				})
			})
		},
	}

	cmd.Flags().IntVar(&stage1, "stage1", 0, "Minimum token-sort score for a blocked match")
	cmd.Flags().IntVar(&stage2, "stage2", 0, "Minimum composite score for a fallback match")
	cmd.Flags().IntVar(&maxCandidates, "max-candidates", 0, "Row cap per blocked candidate query")
	cmd.Flags().BoolVar(&useSeries, "use-series", false, "Extend blocking to the series label")
	cmd.Flags().BoolVar(&showMisses, "show-misses", false, "List titles that missed both stages")
	cmd.Flags().IntVar(&workers, "workers", 0, "Fan-out for per-record matching")
	return cmd
}

func printDiagnostics(out io.Writer, report *linkage.Report) {
	if len(report.NoCandidates) > 0 {
		fmt.Fprintf(out, "\nTitles whose author block returned no candidates (%d):\n", len(report.NoCandidates))
		for _, title := range report.NoCandidates {
			fmt.Fprintf(out, "  %s\n", title)
		}
	}
	if len(report.Unmatched) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Unmatched))
	for _, rec := range report.Unmatched {
		rows = append(rows, []string{rec.ISBN13, rec.Title, rec.Author})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"ISBN-13", "Title", "Author"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft}))
}
