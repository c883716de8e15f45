package catalog

// SourceRecord is one bestseller-feed entry awaiting resolution against the
// ratings catalog. The ISBN-13 from the feed is the linkage key; title and
// author are free text and carry no stability guarantees.
type SourceRecord struct {
	ISBN13   string
	Title    string
	Author   string
	ListName string
	Week     string
}

// Entry is one row of the ratings catalog. Rows are deduplicated upstream to
// one per ISBN-13 (most ratings, then highest rating, then lowest book id),
// so the engine may treat ISBN13 as unique. AverageRating and RatingsCount
// are nil when the catalog export carried no value.
type Entry struct {
	BookID        int64
	ISBN13        string
	Title         string
	Authors       string
	Series        string
	AverageRating *float64
	RatingsCount  *int64
}

// Scoreable reports whether the entry may participate in similarity scoring.
// Rows with neither a rating nor an empty author field carry nothing worth
// linking to and are excluded from candidate sets.
func (e Entry) Scoreable() bool {
	return e.AverageRating != nil || e.Authors == ""
}

// StageTag identifies which matching stage produced a link.
type StageTag string

// Stage tags recorded on persisted links.
const (
	StageBlocked  StageTag = "blocked"
	StageFallback StageTag = "fallback"
)

// Link is an accepted match between a source record and a catalog entry.
// At most one Link exists per source ISBN-13; the store enforces this with
// insert-or-ignore semantics.
type Link struct {
	SourceISBN13  string
	CatalogISBN13 string
	BookID        int64
	AverageRating *float64
	RatingsCount  *int64
	Score         int
	Stage         StageTag
}

// StageCounts is the per-stage breakdown of persisted links, used for the
// run summary.
type StageCounts struct {
	Blocked  int
	Fallback int
}

// Total returns the combined link count across stages.
func (c StageCounts) Total() int {
	return c.Blocked + c.Fallback
}
