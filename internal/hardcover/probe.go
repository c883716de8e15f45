package hardcover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/encoding/json"

	"shelflink/internal/logging"
)

// ProbeOptions controls a join probe over a batch of ISBNs.
type ProbeOptions struct {
	// Limit caps how many ISBNs are looked up. Zero means 1000.
	Limit int
	// Delay paces requests. Zero means 400ms.
	Delay time.Duration
	// HitDir, when set, receives one JSON file per resolved ISBN.
	HitDir string
}

// ProbeStats summarizes a join probe.
type ProbeStats struct {
	Probed int
	Hits   int
	Misses int
	Errors int
}

// HitRate returns the fraction of probed ISBNs that resolved, zero when
// nothing was probed.
func (s ProbeStats) HitRate() float64 {
	if s.Probed == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Probed)
}

// Probe looks up each ISBN in order, counting hits and misses. Lookup
// errors are counted as misses and logged rather than aborting: the probe
// estimates a join rate, and a flaky lookup should not discard the rest of
// the sample. Context cancellation does abort.
func (c *Client) Probe(ctx context.Context, isbns []string, opts ProbeOptions) (*ProbeStats, error) {
	if opts.Limit <= 0 {
		opts.Limit = 1000
	}
	if opts.Delay <= 0 {
		opts.Delay = 400 * time.Millisecond
	}
	if opts.HitDir != "" {
		if err := os.MkdirAll(opts.HitDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure hit directory: %w", err)
		}
	}

	stats := &ProbeStats{}
	for i, isbn := range isbns {
		if i >= opts.Limit {
			break
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
		stats.Probed++

		book, err := c.FetchBook(ctx, isbn)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Errors++
			stats.Misses++
			c.logger.Warn("lookup failed", logging.String("isbn", isbn), logging.Error(err))
			continue
		}
		if book == nil {
			stats.Misses++
			continue
		}
		stats.Hits++
		if opts.HitDir != "" {
			if err := writeHit(opts.HitDir, isbn, book); err != nil {
				return stats, err
			}
		}

		if stats.Probed%100 == 0 {
			c.logger.Info("probe progress",
				logging.Int("probed", stats.Probed),
				logging.Float64("hit_rate", stats.HitRate()))
		}
	}
	return stats, nil
}

func writeHit(dir, isbn string, book *BookDoc) error {
	payload, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode hit %s: %w", isbn, err)
	}
	path := filepath.Join(dir, isbn+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write hit %s: %w", path, err)
	}
	return nil
}
