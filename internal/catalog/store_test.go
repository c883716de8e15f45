package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "shelflink.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func seedEntries(t *testing.T, store *Store, entries []Entry) {
	t.Helper()
	ctx := context.Background()
	for _, e := range entries {
		_, err := store.db.ExecContext(ctx, `INSERT INTO catalog_entries
			(book_id, isbn13, title, authors, series, average_rating, ratings_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.BookID, e.ISBN13, e.Title, e.Authors, e.Series,
			nullableFloat(e.AverageRating), nullableInt(e.RatingsCount))
		if err != nil {
			t.Fatalf("seed entry %s: %v", e.ISBN13, err)
		}
	}
}

func ratedEntry(id int64, isbn, title, authors string, rating float64) Entry {
	count := int64(100)
	return Entry{
		BookID:        id,
		ISBN13:        isbn,
		Title:         title,
		Authors:       authors,
		AverageRating: &rating,
		RatingsCount:  &count,
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	store := testStore(t)

	for _, table := range []string{"source_records", "catalog_entries", "links", "schema_migrations"} {
		var name string
		row := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("table %s missing after Open: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shelflink.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen with applied migrations: %v", err)
	}
	_ = second.Close()
}

func TestInsertSourcesIgnoresDuplicates(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	records := []SourceRecord{
		{ISBN13: "9780000000017", Title: "First", Author: "A. Author"},
		{ISBN13: "9780000000024", Title: "Second", Author: "B. Writer"},
	}
	inserted, err := store.InsertSources(ctx, records)
	if err != nil {
		t.Fatalf("InsertSources: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("inserted = %d, want 2", inserted)
	}

	inserted, err = store.InsertSources(ctx, records)
	if err != nil {
		t.Fatalf("second InsertSources: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("re-insert reported %d new rows, want 0", inserted)
	}

	count, err := store.CountSources(ctx)
	if err != nil {
		t.Fatalf("CountSources: %v", err)
	}
	if count != 2 {
		t.Fatalf("source count = %d, want 2", count)
	}
}

func TestUnlinkedSourcesExcludesExactAndLinked(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	seedEntries(t, store, []Entry{
		ratedEntry(1, "9780000000017", "Exact Hit", "Someone", 4.0),
		ratedEntry(2, "9780000000031", "Linked Target", "Someone Else", 4.1),
	})
	_, err := store.InsertSources(ctx, []SourceRecord{
		{ISBN13: "9780000000017", Title: "Exact Hit", Author: "Someone"},
		{ISBN13: "9780000000024", Title: "Needs Fuzzy", Author: "Unknown"},
		{ISBN13: "9780000000048", Title: "Already Linked", Author: "Someone Else"},
	})
	if err != nil {
		t.Fatalf("InsertSources: %v", err)
	}
	_, err = store.InsertLinks(ctx, "run-1", []Link{{
		SourceISBN13:  "9780000000048",
		CatalogISBN13: "9780000000031",
		BookID:        2,
		Score:         95,
		Stage:         StageFallback,
	}})
	if err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}

	unlinked, err := store.UnlinkedSources(ctx)
	if err != nil {
		t.Fatalf("UnlinkedSources: %v", err)
	}
	if len(unlinked) != 1 || unlinked[0].ISBN13 != "9780000000024" {
		t.Fatalf("unlinked = %+v, want only 9780000000024", unlinked)
	}
}

func TestCandidatesBlockedAndBounded(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	unrated := Entry{BookID: 4, ISBN13: "9780000000109", Title: "Unrated With Author", Authors: "Cormac McCarthy"}
	authorless := Entry{BookID: 5, ISBN13: "9780000000116", Title: "Anonymous Work", Authors: ""}
	seedEntries(t, store, []Entry{
		ratedEntry(1, "9780000000055", "The Road", "Cormac McCarthy", 4.0),
		ratedEntry(2, "9780000000062", "Blood Meridian", "Cormac McCarthy", 4.2),
		ratedEntry(3, "9780000000079", "Beloved", "Toni Morrison", 4.1),
		unrated,
		authorless,
	})

	cands, err := store.Candidates(ctx, "mccarthy", "corma", 10, false)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2 rated McCarthy rows: %+v", len(cands), cands)
	}
	if cands[0].BookID != 1 || cands[1].BookID != 2 {
		t.Fatalf("candidates not in book_id order: %+v", cands)
	}

	bounded, err := store.Candidates(ctx, "mccarthy", "corma", 1, false)
	if err != nil {
		t.Fatalf("bounded Candidates: %v", err)
	}
	if len(bounded) != 1 {
		t.Fatalf("limit not honored: got %d rows", len(bounded))
	}
}

func TestCandidatesSeriesBlocking(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	withSeries := ratedEntry(1, "9780000000055", "The Fellowship of the Ring", "Unrelated Name", 4.5)
	withSeries.Series = "Tolkien Legendarium"
	seedEntries(t, store, []Entry{withSeries})

	off, err := store.Candidates(ctx, "tolkien", "j. r.", 10, false)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(off) != 0 {
		t.Fatalf("series row matched with series blocking off: %+v", off)
	}

	on, err := store.Candidates(ctx, "tolkien", "j. r.", 10, true)
	if err != nil {
		t.Fatalf("Candidates with series: %v", err)
	}
	if len(on) != 1 {
		t.Fatalf("series blocking missed the row: %+v", on)
	}
}

func TestScoredEntriesRatedOnly(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	seedEntries(t, store, []Entry{
		ratedEntry(2, "9780000000062", "Rated", "Someone", 4.0),
		{BookID: 1, ISBN13: "9780000000055", Title: "Unrated", Authors: "Someone"},
	})

	entries, err := store.ScoredEntries(ctx)
	if err != nil {
		t.Fatalf("ScoredEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].BookID != 2 {
		t.Fatalf("expected only the rated row, got %+v", entries)
	}
}

func TestInsertLinksIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rating := 4.2
	count := int64(12345)
	links := []Link{
		{SourceISBN13: "9780000000017", CatalogISBN13: "9780000000055", BookID: 1,
			AverageRating: &rating, RatingsCount: &count, Score: 100, Stage: StageBlocked},
		{SourceISBN13: "9780000000024", CatalogISBN13: "9780000000062", BookID: 2,
			Score: 95, Stage: StageFallback},
	}

	inserted, err := store.InsertLinks(ctx, "run-1", links)
	if err != nil {
		t.Fatalf("InsertLinks: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("inserted = %d, want 2", inserted)
	}

	// Re-running the same batch, even with a different score, changes nothing.
	links[0].Score = 90
	inserted, err = store.InsertLinks(ctx, "run-2", links)
	if err != nil {
		t.Fatalf("second InsertLinks: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("re-insert reported %d new links, want 0", inserted)
	}

	link, err := store.LinkBySource(ctx, "9780000000017")
	if err != nil {
		t.Fatalf("LinkBySource: %v", err)
	}
	if link == nil || link.Score != 100 {
		t.Fatalf("existing link mutated by re-insert: %+v", link)
	}
	if link.Stage != StageBlocked {
		t.Fatalf("stage = %q, want %q", link.Stage, StageBlocked)
	}
	if link.AverageRating == nil || *link.AverageRating != 4.2 {
		t.Fatalf("rating not persisted: %+v", link)
	}

	counts, err := store.LinkStageCounts(ctx)
	if err != nil {
		t.Fatalf("LinkStageCounts: %v", err)
	}
	if counts.Blocked != 1 || counts.Fallback != 1 {
		t.Fatalf("stage counts = %+v, want 1 blocked / 1 fallback", counts)
	}
}

func TestLinkBySourceMissing(t *testing.T) {
	store := testStore(t)

	link, err := store.LinkBySource(context.Background(), "9780000000999")
	if err != nil {
		t.Fatalf("LinkBySource: %v", err)
	}
	if link != nil {
		t.Fatalf("expected nil for missing link, got %+v", link)
	}
}
