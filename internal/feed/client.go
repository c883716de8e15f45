package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sethgrid/pester"

	"shelflink/internal/logging"
)

// DefaultEndpoint is the weekly full-overview endpoint.
const DefaultEndpoint = "https://api.nytimes.com/svc/books/v3/lists/full-overview.json"

// ClientOptions configures the overview client.
type ClientOptions struct {
	// Endpoint overrides the overview URL. Empty means DefaultEndpoint.
	Endpoint string
	// APIKey authenticates overview requests.
	APIKey string
	// SnapshotDir is where raw payloads are written, one file per Monday.
	SnapshotDir string
	// MaxRetries bounds retry attempts per request. Zero means 3.
	MaxRetries int
	// Timeout bounds each request. Zero means 15 seconds.
	Timeout time.Duration
}

// Client fetches bestseller overview snapshots with retry and backoff.
type Client struct {
	http        *pester.Client
	endpoint    string
	apiKey      string
	snapshotDir string
	logger      *slog.Logger
}

// NewClient builds an overview client. A nil logger disables logging.
func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = opts.MaxRetries
	client.RetryOnHTTP429 = true
	client.Timeout = opts.Timeout

	return &Client{
		http:        client,
		endpoint:    opts.Endpoint,
		apiKey:      opts.APIKey,
		snapshotDir: opts.SnapshotDir,
		logger:      logger.With(logging.String("component", "feed")),
	}
}

// FetchOverview retrieves the raw overview payload published on the given
// ISO date.
func (c *Client) FetchOverview(ctx context.Context, dateISO string) ([]byte, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse overview endpoint: %w", err)
	}
	query := u.Query()
	query.Set("api-key", c.apiKey)
	query.Set("published_date", dateISO)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build overview request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch overview for %s: %w", dateISO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overview for %s: unexpected status %s", dateISO, resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read overview body for %s: %w", dateISO, err)
	}
	return payload, nil
}

// SaveSnapshot writes a raw payload to the snapshot directory, named by its
// ISO date. Returns the written path.
func (c *Client) SaveSnapshot(dateISO string, payload []byte) (string, error) {
	if err := os.MkdirAll(c.snapshotDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure snapshot directory: %w", err)
	}
	path := filepath.Join(c.snapshotDir, dateISO+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return path, nil
}

// FetchRange fetches and saves one snapshot per week from start to end
// inclusive, returning the decoded overviews in date order.
func (c *Client) FetchRange(ctx context.Context, startISO, endISO string) ([]*Overview, error) {
	dates, err := Mondays(startISO, endISO)
	if err != nil {
		return nil, err
	}

	overviews := make([]*Overview, 0, len(dates))
	for _, date := range dates {
		payload, err := c.FetchOverview(ctx, date)
		if err != nil {
			return nil, err
		}
		path, err := c.SaveSnapshot(date, payload)
		if err != nil {
			return nil, err
		}
		overview, err := ParseSnapshot(payload)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", date, err)
		}
		c.logger.Info("snapshot saved",
			logging.String("date", date),
			logging.String("path", path),
			logging.Int("lists", len(overview.Results.Lists)))
		overviews = append(overviews, overview)
	}
	return overviews, nil
}
