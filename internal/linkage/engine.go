package linkage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shelflink/internal/catalog"
	"shelflink/internal/logging"
)

// Catalog is the engine's read-only view of the ratings catalog. Candidates
// serves the blocked stage with a bounded author-filtered set; ScoredEntries
// serves the fallback stage with every rated row and is queried once per
// run. Any error from either query aborts the run: the catalog is a shared,
// required resource for every comparison.
type Catalog interface {
	Candidates(ctx context.Context, surname, prefix string, limit int, useSeries bool) ([]catalog.Entry, error)
	ScoredEntries(ctx context.Context) ([]catalog.Entry, error)
}

// Config holds the tunable matching parameters.
type Config struct {
	// Stage1Threshold is the minimum token-sort score for a blocked match.
	Stage1Threshold int
	// Stage2Threshold is the minimum weighted-ratio score for a fallback
	// match. It is higher than Stage1Threshold because fallback comparisons
	// run catalog-wide without author evidence.
	Stage2Threshold int
	// MaxCandidates bounds the row count of each blocked candidate query.
	MaxCandidates int
	// UseSeries extends blocking to the catalog's series label.
	UseSeries bool
	// Workers is the fan-out for per-record matching. Matching is read-only
	// per record, so any worker count produces identical results.
	Workers int
}

// DefaultConfig returns the reference matching parameters.
func DefaultConfig() Config {
	return Config{
		Stage1Threshold: 85,
		Stage2Threshold: 94,
		MaxCandidates:   2000,
		UseSeries:       false,
		Workers:         1,
	}
}

func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if c.Stage1Threshold <= 0 {
		c.Stage1Threshold = defaults.Stage1Threshold
	}
	if c.Stage2Threshold <= 0 {
		c.Stage2Threshold = defaults.Stage2Threshold
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = defaults.MaxCandidates
	}
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	return c
}

// Engine runs the two-stage linkage over a batch of source records.
type Engine struct {
	catalog Catalog
	cfg     Config
	logger  *slog.Logger
}

// NewEngine creates an engine over the given catalog. A nil logger disables
// logging.
func NewEngine(cat Catalog, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		catalog: cat,
		cfg:     cfg.normalized(),
		logger:  logger.With(logging.String("component", "linkage")),
	}
}

// Report aggregates the outcome of one linkage run. Links holds every
// accepted match with its stage tag; NoCandidates lists the titles whose
// blocked query returned zero rows (diagnostics); Unmatched holds the
// terminal misses after both stages.
type Report struct {
	Links        []catalog.Link
	NoCandidates []string
	Unmatched    []catalog.SourceRecord
	Elapsed      time.Duration
}

// StageCounts returns the per-stage link breakdown.
func (r *Report) StageCounts() catalog.StageCounts {
	var counts catalog.StageCounts
	for _, link := range r.Links {
		switch link.Stage {
		case catalog.StageBlocked:
			counts.Blocked++
		case catalog.StageFallback:
			counts.Fallback++
		}
	}
	return counts
}

type stageOutcome struct {
	link         *catalog.Link
	noCandidates bool
	err          error
}

// Run resolves every source record: first the blocked stage over all
// records, then the fallback stage over the remainder against a single
// full-catalog snapshot. Each record yields at most one link per run, tagged
// with the stage that produced it. The returned report carries no partial
// state on error; nothing is persisted here.
func (e *Engine) Run(ctx context.Context, sources []catalog.SourceRecord) (*Report, error) {
	start := time.Now()
	report := &Report{}

	outcomes := e.forEach(len(sources), func(i int) stageOutcome {
		return e.matchBlocked(ctx, sources[i])
	})

	var pending []catalog.SourceRecord
	for i, out := range outcomes {
		if out.err != nil {
			return nil, out.err
		}
		if out.link != nil {
			report.Links = append(report.Links, *out.link)
			continue
		}
		if out.noCandidates {
			report.NoCandidates = append(report.NoCandidates, sources[i].Title)
		}
		pending = append(pending, sources[i])
	}
	e.logger.Debug("blocked stage complete",
		logging.Int("sources", len(sources)),
		logging.Int("matched", len(report.Links)),
		logging.Int("pending", len(pending)))

	if len(pending) > 0 {
		entries, err := e.catalog.ScoredEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("load scored catalog: %w", err)
		}
		normalized := make([]string, len(entries))
		for i, entry := range entries {
			normalized[i] = NormalizeTitle(entry.Title)
		}

		fallback := e.forEach(len(pending), func(i int) stageOutcome {
			return e.matchFallback(pending[i], entries, normalized)
		})
		for i, out := range fallback {
			if out.link != nil {
				report.Links = append(report.Links, *out.link)
			} else {
				report.Unmatched = append(report.Unmatched, pending[i])
			}
		}
		e.logger.Debug("fallback stage complete",
			logging.Int("pending", len(pending)),
			logging.Int("catalog_rows", len(entries)),
			logging.Int("unmatched", len(report.Unmatched)))
	}

	report.Elapsed = time.Since(start)
	counts := report.StageCounts()
	e.logger.Info("linkage run complete",
		logging.Int("matches", counts.Total()),
		logging.Int("blocked", counts.Blocked),
		logging.Int("fallback", counts.Fallback),
		logging.Int("unmatched", len(report.Unmatched)),
		logging.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (e *Engine) matchBlocked(ctx context.Context, rec catalog.SourceRecord) stageOutcome {
	keys, ok := NewBlockingKeys(rec.Author)
	if !ok {
		// No usable block; the fallback stage picks the record up.
		return stageOutcome{}
	}
	cands, err := e.catalog.Candidates(ctx, keys.Surname, keys.Prefix, e.cfg.MaxCandidates, e.cfg.UseSeries)
	if err != nil {
		return stageOutcome{err: fmt.Errorf("blocked candidates for %s: %w", rec.ISBN13, err)}
	}
	if len(cands) == 0 {
		return stageOutcome{noCandidates: true}
	}

	normalized := make([]string, len(cands))
	for i, c := range cands {
		normalized[i] = NormalizeTitle(c.Title)
	}
	idx, score := bestMatch(NormalizeTitle(rec.Title), normalized, TokenSortRatio)
	if idx < 0 || score < e.cfg.Stage1Threshold {
		return stageOutcome{}
	}
	link := newLink(rec, cands[idx], score, catalog.StageBlocked)
	return stageOutcome{link: &link}
}

func (e *Engine) matchFallback(rec catalog.SourceRecord, entries []catalog.Entry, normalized []string) stageOutcome {
	idx, score := bestMatch(NormalizeTitle(rec.Title), normalized, WeightedRatio)
	if idx < 0 || score < e.cfg.Stage2Threshold {
		return stageOutcome{}
	}
	link := newLink(rec, entries[idx], score, catalog.StageFallback)
	return stageOutcome{link: &link}
}

// forEach evaluates fn for each index, fanning out across cfg.Workers
// goroutines. Every result lands in its input slot, so the output order is
// independent of worker scheduling and downstream tie-breaks stay
// deterministic.
func (e *Engine) forEach(n int, fn func(int) stageOutcome) []stageOutcome {
	outcomes := make([]stageOutcome, n)
	workers := e.cfg.Workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			outcomes[i] = fn(i)
		}
		return outcomes
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return outcomes
}

func newLink(rec catalog.SourceRecord, entry catalog.Entry, score int, stage catalog.StageTag) catalog.Link {
	return catalog.Link{
		SourceISBN13:  rec.ISBN13,
		CatalogISBN13: entry.ISBN13,
		BookID:        entry.BookID,
		AverageRating: entry.AverageRating,
		RatingsCount:  entry.RatingsCount,
		Score:         score,
		Stage:         stage,
	}
}
