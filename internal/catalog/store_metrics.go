package catalog

import (
	"context"
	"fmt"
)

// Coverage summarizes how complete the loaded catalog is.
type Coverage struct {
	Total      int64
	Rated      int64
	WithSeries int64
}

// RatingCoverage returns the rated fraction, or nil for an empty catalog.
func (c Coverage) RatingCoverage() *float64 {
	return fraction(c.Rated, c.Total)
}

// SeriesCoverage returns the fraction carrying a series label, or nil for an
// empty catalog.
func (c Coverage) SeriesCoverage() *float64 {
	return fraction(c.WithSeries, c.Total)
}

func fraction(part, total int64) *float64 {
	if total == 0 {
		return nil
	}
	v := float64(part) / float64(total)
	return &v
}

// CatalogCoverage measures rating and series completeness over the catalog.
func (s *Store) CatalogCoverage(ctx context.Context) (Coverage, error) {
	var cov Coverage
	row := s.db.QueryRowContext(ctx, `SELECT
		COUNT(1),
		COUNT(average_rating),
		SUM(CASE WHEN series != '' THEN 1 ELSE 0 END)
		FROM catalog_entries`)
	var withSeries *int64
	if err := row.Scan(&cov.Total, &cov.Rated, &withSeries); err != nil {
		return Coverage{}, fmt.Errorf("measure catalog coverage: %w", err)
	}
	if withSeries != nil {
		cov.WithSeries = *withSeries
	}
	return cov, nil
}

// JoinRate estimates the exact-ISBN join rate between source records and the
// catalog over a bounded sample. Returns nil when no sources are stored.
func (s *Store) JoinRate(ctx context.Context, sampleSize int) (*float64, error) {
	row := s.db.QueryRowContext(ctx, `WITH sample AS (
			SELECT isbn13 FROM source_records ORDER BY isbn13 LIMIT ?
		)
		SELECT
			COUNT(1),
			SUM(CASE WHEN c.isbn13 IS NOT NULL THEN 1 ELSE 0 END)
		FROM sample s
		LEFT JOIN catalog_entries c ON c.isbn13 = s.isbn13`, sampleSize)

	var (
		sampled int64
		joined  *int64
	)
	if err := row.Scan(&sampled, &joined); err != nil {
		return nil, fmt.Errorf("measure join rate: %w", err)
	}
	if sampled == 0 || joined == nil {
		return nil, nil
	}
	return fraction(*joined, sampled), nil
}
