package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
)

const exportCSV = `Id,Name,Authors,ISBN,Rating,CountsOfReview
1,The Road,Cormac McCarthy.,0307387895,3.97,16500
2,The Road,Cormac McCarthy,9780307387899,4.10,9000
3,Blood Meridian,Cormac McCarthy,9780679728757,4.19,7300
4,No ISBN Here,Somebody,,4.50,100
5,Bad Identifier,Somebody,not-an-isbn,4.50,100
`

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func TestLoadCatalogCSV(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	stats, err := store.LoadCatalogCSV(ctx, []string{writeExport(t, "books.csv", exportCSV)}, false, nil)
	if err != nil {
		t.Fatalf("LoadCatalogCSV: %v", err)
	}
	if stats.RowsRead != 5 {
		t.Fatalf("rows read = %d, want 5", stats.RowsRead)
	}
	if stats.SkippedNo != 2 {
		t.Fatalf("skipped = %d, want 2 rows without usable ISBNs", stats.SkippedNo)
	}
	// Rows 1 and 2 normalize to the same ISBN-13; the one with more ratings
	// wins the dedup.
	if stats.RowsKept != 2 || stats.Inserted != 2 {
		t.Fatalf("kept/inserted = %d/%d, want 2/2", stats.RowsKept, stats.Inserted)
	}

	entry, err := store.EntryByISBN(ctx, "9780307387899")
	if err != nil {
		t.Fatalf("EntryByISBN: %v", err)
	}
	if entry == nil {
		t.Fatal("deduplicated entry missing")
	}
	if entry.BookID != 1 {
		t.Fatalf("dedup kept book %d, want 1 (most ratings)", entry.BookID)
	}
	if entry.Authors != "Cormac McCarthy" {
		t.Fatalf("trailing period not stripped from authors: %q", entry.Authors)
	}
	if entry.RatingsCount == nil || *entry.RatingsCount != 16500 {
		t.Fatalf("ratings count not carried: %+v", entry)
	}
}

func TestLoadCatalogCSVGzip(t *testing.T) {
	store := testStore(t)
	path := filepath.Join(t.TempDir(), "books.csv.gz")

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create gzip export: %v", err)
	}
	gz := pgzip.NewWriter(file)
	if _, err := gz.Write([]byte(exportCSV)); err != nil {
		t.Fatalf("write gzip export: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close export file: %v", err)
	}

	stats, err := store.LoadCatalogCSV(context.Background(), []string{path}, false, nil)
	if err != nil {
		t.Fatalf("LoadCatalogCSV gzip: %v", err)
	}
	if stats.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2", stats.Inserted)
	}
}

func TestLoadCatalogCSVReset(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	seedEntries(t, store, []Entry{
		ratedEntry(99, "9780000000017", "Stale Row", "Old Author", 2.0),
	})

	stats, err := store.LoadCatalogCSV(ctx, []string{writeExport(t, "books.csv", exportCSV)}, true, nil)
	if err != nil {
		t.Fatalf("LoadCatalogCSV reset: %v", err)
	}
	if stats.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2", stats.Inserted)
	}

	stale, err := store.EntryByISBN(ctx, "9780000000017")
	if err != nil {
		t.Fatalf("EntryByISBN: %v", err)
	}
	if stale != nil {
		t.Fatalf("reset left stale row behind: %+v", stale)
	}
}

func TestLoadCatalogCSVSeriesColumn(t *testing.T) {
	store := testStore(t)
	csvWithSeries := `Id,Name,Authors,ISBN,Rating,CountsOfReview,Series
1,The Fellowship of the Ring,J.R.R. Tolkien,9780618640157,4.38,11000,The Lord of the Rings
`
	stats, err := store.LoadCatalogCSV(context.Background(), []string{writeExport(t, "books.csv", csvWithSeries)}, false, nil)
	if err != nil {
		t.Fatalf("LoadCatalogCSV: %v", err)
	}
	if stats.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", stats.Inserted)
	}

	entry, err := store.EntryByISBN(context.Background(), "9780618640157")
	if err != nil {
		t.Fatalf("EntryByISBN: %v", err)
	}
	if entry == nil || entry.Series != "The Lord of the Rings" {
		t.Fatalf("series column not loaded: %+v", entry)
	}
	if entry.Authors != "J.R.R. Tolkien" {
		t.Fatalf("initials mangled by author cleanup: %q", entry.Authors)
	}
}

func TestLoadCatalogCSVMissingColumn(t *testing.T) {
	store := testStore(t)
	bad := "Id,Name,ISBN\n1,Broken,9780618640157\n"

	_, err := store.LoadCatalogCSV(context.Background(), []string{writeExport(t, "books.csv", bad)}, false, nil)
	if err == nil {
		t.Fatal("expected error for export missing required columns")
	}
}

func TestLoadCatalogCSVDedupSpansChunks(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	chunkA := writeExport(t, "chunk_a.csv", `Id,Name,Authors,ISBN,Rating,CountsOfReview
10,The Road,Cormac McCarthy,9780307387899,3.80,100
`)
	chunkB := writeExport(t, "chunk_b.csv", `Id,Name,Authors,ISBN,Rating,CountsOfReview
20,The Road,Cormac McCarthy,9780307387899,3.97,99999
`)

	stats, err := store.LoadCatalogCSV(ctx, []string{chunkA, chunkB}, false, nil)
	if err != nil {
		t.Fatalf("LoadCatalogCSV: %v", err)
	}
	if stats.RowsRead != 2 || stats.RowsKept != 1 || stats.Inserted != 1 {
		t.Fatalf("read/kept/inserted = %d/%d/%d, want 2/1/1",
			stats.RowsRead, stats.RowsKept, stats.Inserted)
	}

	entry, err := store.EntryByISBN(ctx, "9780307387899")
	if err != nil {
		t.Fatalf("EntryByISBN: %v", err)
	}
	if entry == nil {
		t.Fatal("deduplicated entry missing")
	}
	// The later chunk's row has the most ratings and must win even though
	// the earlier chunk was read first.
	if entry.BookID != 20 {
		t.Fatalf("dedup kept book %d from the first chunk, want 20 (most ratings)", entry.BookID)
	}
	if entry.RatingsCount == nil || *entry.RatingsCount != 99999 {
		t.Fatalf("ratings count not carried from winning row: %+v", entry)
	}
}
