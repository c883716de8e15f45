package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertLinks persists accepted matches with insert-or-ignore semantics: a
// source ISBN-13 that already has a link keeps its existing row. Returns the
// number of newly inserted links, so re-running the same batch reports zero.
func (s *Store) InsertLinks(ctx context.Context, runID string, links []Link) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin link insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO links
		(source_isbn13, catalog_isbn13, book_id, average_rating, ratings_count, score, stage, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_isbn13) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare link insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, link := range links {
		result, err := stmt.ExecContext(ctx,
			link.SourceISBN13, link.CatalogISBN13, link.BookID,
			nullableFloat(link.AverageRating), nullableInt(link.RatingsCount),
			link.Score, string(link.Stage), runID)
		if err != nil {
			return 0, fmt.Errorf("insert link %s: %w", link.SourceISBN13, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for %s: %w", link.SourceISBN13, err)
		}
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit link insert: %w", err)
	}
	return inserted, nil
}

// LinkStageCounts returns the persisted link breakdown by stage.
func (s *Store) LinkStageCounts(ctx context.Context) (StageCounts, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT stage, COUNT(1) FROM links GROUP BY stage")
	if err != nil {
		return StageCounts{}, fmt.Errorf("count links by stage: %w", err)
	}
	defer rows.Close()

	var counts StageCounts
	for rows.Next() {
		var (
			stage string
			n     int
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return StageCounts{}, fmt.Errorf("scan stage count: %w", err)
		}
		switch StageTag(stage) {
		case StageBlocked:
			counts.Blocked = n
		case StageFallback:
			counts.Fallback = n
		}
	}
	if err := rows.Err(); err != nil {
		return StageCounts{}, fmt.Errorf("iterate stage counts: %w", err)
	}
	return counts, nil
}

// LinkBySource returns the persisted link for one source ISBN-13, or
// (nil, nil) when none exists.
func (s *Store) LinkBySource(ctx context.Context, sourceISBN13 string) (*Link, error) {
	row := s.db.QueryRowContext(ctx, `SELECT source_isbn13, catalog_isbn13, book_id,
		average_rating, ratings_count, score, stage
		FROM links WHERE source_isbn13 = ?`, sourceISBN13)

	var (
		link   Link
		stage  string
		rating sql.NullFloat64
		count  sql.NullInt64
	)
	err := row.Scan(&link.SourceISBN13, &link.CatalogISBN13, &link.BookID,
		&rating, &count, &link.Score, &stage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query link %s: %w", sourceISBN13, err)
	}
	if rating.Valid {
		v := rating.Float64
		link.AverageRating = &v
	}
	if count.Valid {
		v := count.Int64
		link.RatingsCount = &v
	}
	link.Stage = StageTag(stage)
	return &link, nil
}
