// Package gate implements the pre-flight data sufficiency check: enough
// snapshot weeks on disk, a complete-enough catalog, and a workable
// exact-ISBN join rate, each against a configurable threshold.
package gate

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"shelflink/internal/catalog"
)

// Thresholds are the minimums each measurement must meet.
type Thresholds struct {
	MinWeeks          int
	MinRatingCoverage float64
	MinSeriesCoverage float64
	MinJoinRate       float64
	SampleSize        int
}

// DefaultThresholds returns the reference gate thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWeeks:          26,
		MinRatingCoverage: 0.90,
		MinSeriesCoverage: 0.90,
		MinJoinRate:       0.80,
		SampleSize:        1000,
	}
}

// Metrics are the measured values. Rate fields are nil when the underlying
// data is missing or empty; a missing measurement never passes.
type Metrics struct {
	SnapshotWeeks  int
	RatingCoverage *float64
	SeriesCoverage *float64
	JoinRate       *float64
	Thresholds     Thresholds
}

// PassesWeeks reports whether enough snapshot weeks exist.
func (m Metrics) PassesWeeks() bool {
	return m.SnapshotWeeks >= m.Thresholds.MinWeeks
}

// PassesCoverage reports whether the catalog is complete enough on both the
// rating and series dimensions.
func (m Metrics) PassesCoverage() bool {
	if m.RatingCoverage == nil || m.SeriesCoverage == nil {
		return false
	}
	return *m.RatingCoverage >= m.Thresholds.MinRatingCoverage &&
		*m.SeriesCoverage >= m.Thresholds.MinSeriesCoverage
}

// PassesJoinRate reports whether the exact-ISBN join rate is workable.
func (m Metrics) PassesJoinRate() bool {
	return m.JoinRate != nil && *m.JoinRate >= m.Thresholds.MinJoinRate
}

// Pass reports whether every gate condition holds.
func (m Metrics) Pass() bool {
	return m.PassesWeeks() && m.PassesCoverage() && m.PassesJoinRate()
}

// Measure collects the gate metrics from the snapshot directory and store.
func Measure(ctx context.Context, snapshotDir string, store *catalog.Store, thresholds Thresholds) (Metrics, error) {
	metrics := Metrics{
		SnapshotWeeks: countSnapshotWeeks(snapshotDir),
		Thresholds:    thresholds,
	}

	coverage, err := store.CatalogCoverage(ctx)
	if err != nil {
		return Metrics{}, err
	}
	metrics.RatingCoverage = coverage.RatingCoverage()
	metrics.SeriesCoverage = coverage.SeriesCoverage()

	joinRate, err := store.JoinRate(ctx, thresholds.SampleSize)
	if err != nil {
		return Metrics{}, err
	}
	metrics.JoinRate = joinRate
	return metrics, nil
}

// countSnapshotWeeks counts distinct snapshot files by date stem. A missing
// directory counts as zero weeks rather than an error; the gate exists to
// report exactly that kind of gap.
func countSnapshotWeeks(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	weeks := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(entry.Name()), ".json")
		weeks[stem] = struct{}{}
	}
	return len(weeks)
}
