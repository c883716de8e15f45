package catalog

import (
	"context"
	"fmt"
)

// InsertSources stores bestseller source records, ignoring ISBNs already
// present. Returns the number of newly inserted rows.
func (s *Store) InsertSources(ctx context.Context, records []SourceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin source insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO source_records
		(isbn13, title, author, list_name, week)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(isbn13) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare source insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, rec := range records {
		result, err := stmt.ExecContext(ctx, rec.ISBN13, rec.Title, rec.Author, rec.ListName, rec.Week)
		if err != nil {
			return 0, fmt.Errorf("insert source %s: %w", rec.ISBN13, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for %s: %w", rec.ISBN13, err)
		}
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit source insert: %w", err)
	}
	return inserted, nil
}

// UnlinkedSources returns the source records with no persisted link and no
// exact ISBN hit in the catalog. These are the rows the fuzzy stages work on;
// every run recomputes the set, so a catalog refresh can resolve prior
// misses.
func (s *Store) UnlinkedSources(ctx context.Context) ([]SourceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT isbn13, title, author, list_name, week
		FROM source_records
		WHERE isbn13 NOT IN (SELECT source_isbn13 FROM links)
		AND isbn13 NOT IN (SELECT isbn13 FROM catalog_entries)
		ORDER BY isbn13`)
	if err != nil {
		return nil, fmt.Errorf("query unlinked sources: %w", err)
	}
	defer rows.Close()

	var records []SourceRecord
	for rows.Next() {
		var rec SourceRecord
		if err := rows.Scan(&rec.ISBN13, &rec.Title, &rec.Author, &rec.ListName, &rec.Week); err != nil {
			return nil, fmt.Errorf("scan source record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source records: %w", err)
	}
	return records, nil
}

// CountSources returns the stored source record count.
func (s *Store) CountSources(ctx context.Context) (int64, error) {
	var count int64
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM source_records")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count source records: %w", err)
	}
	return count, nil
}
