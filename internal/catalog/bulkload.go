package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"shelflink/internal/isbn"
	"shelflink/internal/logging"
)

// LoadStats summarizes one bulk catalog load.
type LoadStats struct {
	RowsRead  int64
	RowsKept  int64
	Inserted  int64
	SkippedNo int64 // rows without a usable ISBN
}

// LoadCatalogCSV ingests ratings-catalog CSV exports into catalog_entries.
// Files may be plain, gzip (.gz) or zstandard (.zst) compressed. Rows are
// keyed by normalized ISBN-13 and deduplicated across ALL files of the
// invocation (chunked exports carry duplicates between chunks): the row with
// the most ratings wins, then the highest rating, then the lowest book id.
// With reset set the existing catalog is dropped first.
func (s *Store) LoadCatalogCSV(ctx context.Context, paths []string, reset bool, logger *slog.Logger) (*LoadStats, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String("component", "bulkload"))

	stats := &LoadStats{}
	best := make(map[string]Entry)
	for _, path := range paths {
		if err := readExport(path, best, stats); err != nil {
			return nil, err
		}
	}
	stats.RowsKept = int64(len(best))

	keys := make([]string, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin catalog load: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if reset {
		if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries"); err != nil {
			return nil, fmt.Errorf("reset catalog: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO catalog_entries
		(book_id, isbn13, title, authors, series, average_rating, ratings_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range keys {
		entry := best[key]
		result, err := stmt.ExecContext(ctx,
			entry.BookID, entry.ISBN13, entry.Title, entry.Authors, entry.Series,
			nullableFloat(entry.AverageRating), nullableInt(entry.RatingsCount))
		if err != nil {
			return nil, fmt.Errorf("insert catalog entry %s: %w", entry.ISBN13, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected for %s: %w", entry.ISBN13, err)
		}
		stats.Inserted += n
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit catalog load: %w", err)
	}

	logger.Info("catalog load complete",
		logging.Int64("rows_read", stats.RowsRead),
		logging.Int64("rows_kept", stats.RowsKept),
		logging.Int64("inserted", stats.Inserted),
		logging.Int64("skipped_no_isbn", stats.SkippedNo))
	return stats, nil
}

// readExport folds one export file into the shared dedup map.
func readExport(path string, best map[string]Entry, stats *LoadStats) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog export: %w", err)
	}
	defer file.Close()

	reader, closeReader, err := decompressed(file, path)
	if err != nil {
		return err
	}
	defer closeReader()

	cr := csv.NewReader(reader)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read %s header: %w", path, err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var rows int64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s row %d: %w", path, rows+2, err)
		}
		rows++
		stats.RowsRead++

		entry, ok := cols.entry(record)
		if !ok {
			stats.SkippedNo++
			continue
		}
		if prev, exists := best[entry.ISBN13]; !exists || preferEntry(entry, prev) {
			best[entry.ISBN13] = entry
		}
	}
	return nil
}

func decompressed(file *os.File, path string) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := pgzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return gz, func() { _ = gz.Close() }, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("open zstd reader: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return file, func() {}, nil
	}
}

type columnMap struct {
	id      int
	isbn    int
	name    int
	authors int
	rating  int
	reviews int
	series  int // -1 when the export has no series column
}

func mapColumns(header []string) (columnMap, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cols := columnMap{series: -1}
	required := []struct {
		name string
		dest *int
	}{
		{"id", &cols.id},
		{"isbn", &cols.isbn},
		{"name", &cols.name},
		{"authors", &cols.authors},
		{"rating", &cols.rating},
		{"countsofreview", &cols.reviews},
	}
	for _, col := range required {
		i, ok := index[col.name]
		if !ok {
			return columnMap{}, fmt.Errorf("catalog export missing column %q", col.name)
		}
		*col.dest = i
	}
	if i, ok := index["series"]; ok {
		cols.series = i
	}
	return cols, nil
}

func (c columnMap) entry(record []string) (Entry, bool) {
	isbn13, ok := isbn.Normalize13(record[c.isbn])
	if !ok {
		return Entry{}, false
	}
	bookID, err := strconv.ParseInt(strings.TrimSpace(record[c.id]), 10, 64)
	if err != nil {
		return Entry{}, false
	}
	entry := Entry{
		BookID:  bookID,
		ISBN13:  isbn13,
		Title:   strings.TrimSpace(record[c.name]),
		Authors: cleanAuthors(record[c.authors]),
	}
	if c.series >= 0 {
		entry.Series = strings.TrimSpace(record[c.series])
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(record[c.rating]), 64); err == nil {
		entry.AverageRating = &v
	}
	if v, err := strconv.ParseInt(strings.TrimSpace(record[c.reviews]), 10, 64); err == nil {
		entry.RatingsCount = &v
	}
	return entry, true
}

// cleanAuthors strips the trailing period some exports append to author
// lists ("J.R.R. Tolkien." -> "J.R.R. Tolkien") without touching initials.
func cleanAuthors(raw string) string {
	authors := strings.TrimSpace(raw)
	if strings.HasSuffix(authors, ".") && !strings.HasSuffix(authors, "..") {
		trimmed := strings.TrimSuffix(authors, ".")
		if !looksLikeInitial(trimmed) {
			authors = trimmed
		}
	}
	return authors
}

// looksLikeInitial reports whether the string ends in a single-letter
// initial, where the stripped period belonged to the name itself.
func looksLikeInitial(s string) bool {
	if s == "" {
		return false
	}
	runes := []rune(s)
	last := runes[len(runes)-1]
	if len(runes) == 1 {
		return true
	}
	prev := runes[len(runes)-2]
	return isLetter(last) && (prev == ' ' || prev == '.') && isUpper(last)
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// preferEntry reports whether a should replace b as the representative row
// for an ISBN: most ratings first, then highest rating, then lowest book id.
func preferEntry(a, b Entry) bool {
	ar, br := int64Or(a.RatingsCount, -1), int64Or(b.RatingsCount, -1)
	if ar != br {
		return ar > br
	}
	av, bv := floatOr(a.AverageRating, -1), floatOr(b.AverageRating, -1)
	if av != bv {
		return av > bv
	}
	return a.BookID < b.BookID
}

func int64Or(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
