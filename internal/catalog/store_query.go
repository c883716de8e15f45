package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Candidates returns up to limit catalog rows whose authors column contains
// the surname or the author prefix, restricted to rows usable for scoring
// (rated, or authorless rows that cannot be blocked on). When useSeries is
// set the series label participates in the block as well. Ordering by
// book_id keeps the result stable across runs.
func (s *Store) Candidates(ctx context.Context, surname, prefix string, limit int, useSeries bool) ([]Entry, error) {
	conds := []string{
		"authors LIKE '%' || ? || '%' COLLATE NOCASE",
		"authors LIKE '%' || ? || '%' COLLATE NOCASE",
	}
	args := []any{surname, prefix}
	if useSeries {
		conds = append(conds,
			"series LIKE '%' || ? || '%' COLLATE NOCASE",
			"series LIKE '%' || ? || '%' COLLATE NOCASE")
		args = append(args, surname, prefix)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM catalog_entries
		WHERE (%s)
		AND (average_rating IS NOT NULL OR authors = '')
		ORDER BY book_id
		LIMIT ?`, entryColumns, strings.Join(conds, " OR "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blocked candidates: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ScoredEntries returns every rated catalog row in book_id order. The
// fallback matching stage loads this once per run.
func (s *Store) ScoredEntries(ctx context.Context) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM catalog_entries
		WHERE average_rating IS NOT NULL
		ORDER BY book_id`, entryColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query scored catalog: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// EntryByISBN looks up a single catalog row. Returns (nil, nil) when absent.
func (s *Store) EntryByISBN(ctx context.Context, isbn13 string) (*Entry, error) {
	query := fmt.Sprintf("SELECT %s FROM catalog_entries WHERE isbn13 = ?", entryColumns)
	row := s.db.QueryRowContext(ctx, query, isbn13)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query entry %s: %w", isbn13, err)
	}
	return &entry, nil
}

// CountEntries returns the catalog row count and how many carry a rating.
func (s *Store) CountEntries(ctx context.Context) (total, rated int64, err error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COUNT(average_rating) FROM catalog_entries")
	if err := row.Scan(&total, &rated); err != nil {
		return 0, 0, fmt.Errorf("count catalog entries: %w", err)
	}
	return total, rated, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", err)
	}
	return entries, nil
}
