// Package hardcover looks up books on the Hardcover GraphQL API by ISBN.
// The probe command uses it to estimate how much of a bestseller feed an
// external catalog can resolve by exact identifier before any fuzzy work.
package hardcover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/sethgrid/pester"

	"shelflink/internal/logging"
)

// DefaultEndpoint is the public GraphQL endpoint.
const DefaultEndpoint = "https://api.hardcover.app/v1/graphql"

// searchQuery asks for the raw results blob; the hit documents are nested
// JSON the API does not expose as typed fields.
const searchQuery = `query ($isbn: String!) {
  search(query_type: "ISBN", query: $isbn, per_page: 1, page: 1) {
    results
  }
}`

// BookDoc is one search hit. Rating and RatingsCount are nil when the
// catalog has no signal for the edition.
type BookDoc struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	ISBNs        []string `json:"isbns"`
	Rating       *float64 `json:"rating"`
	RatingsCount *int64   `json:"ratings_count"`
}

// ClientOptions configures the lookup client.
type ClientOptions struct {
	// Endpoint overrides the GraphQL URL. Empty means DefaultEndpoint.
	Endpoint string
	// Token is the API bearer token; a bare token gets the Bearer prefix.
	Token string
	// MaxRetries bounds retry attempts per request. Zero means 3.
	MaxRetries int
	// Timeout bounds each request. Zero means 10 seconds.
	Timeout time.Duration
}

// Client performs ISBN lookups against the GraphQL API.
type Client struct {
	http     *pester.Client
	endpoint string
	auth     string
	logger   *slog.Logger
}

// NewClient builds a lookup client. A nil logger disables logging.
func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	auth := opts.Token
	if auth != "" && !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		auth = "Bearer " + auth
	}

	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = opts.MaxRetries
	client.RetryOnHTTP429 = true
	client.Timeout = opts.Timeout

	return &Client{
		http:     client,
		endpoint: opts.Endpoint,
		auth:     auth,
		logger:   logger.With(logging.String("component", "hardcover")),
	}
}

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Search struct {
			Results searchResults `json:"results"`
		} `json:"search"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type searchResults struct {
	Found int `json:"found"`
	Hits  []struct {
		Document BookDoc `json:"document"`
	} `json:"hits"`
}

// FetchBook looks up one ISBN. Returns (nil, nil) when the catalog has no
// matching edition.
func (c *Client) FetchBook(ctx context.Context, isbn string) (*BookDoc, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     searchQuery,
		Variables: map[string]string{"isbn": isbn},
	})
	if err != nil {
		return nil, fmt.Errorf("encode lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", isbn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup %s: unexpected status %s", isbn, resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read lookup body for %s: %w", isbn, err)
	}

	var decoded graphqlResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode lookup response for %s: %w", isbn, err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("lookup %s: %s", isbn, decoded.Errors[0].Message)
	}
	hits := decoded.Data.Search.Results.Hits
	if len(hits) == 0 {
		return nil, nil
	}
	doc := hits[0].Document
	return &doc, nil
}
