package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shelflink/internal/catalog"
	"shelflink/internal/gate"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report data sufficiency and exit non-zero on failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			thresholds := gate.Thresholds{
				MinWeeks:          cfg.Gate.MinWeeks,
				MinRatingCoverage: cfg.Gate.MinRatingCoverage,
				MinSeriesCoverage: cfg.Gate.MinSeriesCoverage,
				MinJoinRate:       cfg.Gate.MinJoinRate,
				SampleSize:        cfg.Gate.SampleSize,
			}

			var metrics gate.Metrics
			err = ctx.withStore(func(store *catalog.Store) error {
				var err error
				metrics, err = gate.Measure(cmd.Context(), cfg.Paths.SnapshotDir, store, thresholds)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Measured", "Required", "Pass"},
				[][]string{
					{"Snapshot weeks", fmt.Sprintf("%d", metrics.SnapshotWeeks),
						fmt.Sprintf(">= %d", thresholds.MinWeeks), yesNo(metrics.PassesWeeks())},
					{"Rating coverage", formatRate(metrics.RatingCoverage),
						formatRequiredRate(thresholds.MinRatingCoverage), yesNo(metrics.RatingCoverage != nil && *metrics.RatingCoverage >= thresholds.MinRatingCoverage)},
					{"Series coverage", formatRate(metrics.SeriesCoverage),
						formatRequiredRate(thresholds.MinSeriesCoverage), yesNo(metrics.SeriesCoverage != nil && *metrics.SeriesCoverage >= thresholds.MinSeriesCoverage)},
					{"Exact-ISBN join rate", formatRate(metrics.JoinRate),
						formatRequiredRate(thresholds.MinJoinRate), yesNo(metrics.PassesJoinRate())},
				},
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}))

			if !metrics.Pass() {
				return errors.New("data sufficiency check failed")
			}
			fmt.Fprintln(out, "Data sufficiency check passed")
			return nil
		},
	}
}

func formatRate(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *value*100)
}

func formatRequiredRate(value float64) string {
	return fmt.Sprintf(">= %.0f%%", value*100)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
