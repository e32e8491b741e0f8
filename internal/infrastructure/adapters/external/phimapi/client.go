package phimapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/narwhalmedia/phimdash/internal/catalog/domain"
)

// DefaultBaseURL is the public PhimAPI endpoint.
const DefaultBaseURL = "https://phimapi.com"

// Config holds client settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxAttempts       uint
	RetryDelay        time.Duration
	UserAgent         string
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Client represents a PhimAPI client
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   uint
	delay      time.Duration
	logger     *zap.Logger
}

// NewClient creates a new PhimAPI client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		attempts:   cfg.MaxAttempts,
		delay:      cfg.RetryDelay,
		logger:     logger.Named("phimapi"),
	}
}

// ListNewMovies fetches one page of recently updated movies.
func (c *Client) ListNewMovies(ctx context.Context, page int) (*ListResponse, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{"page": {strconv.Itoa(page)}}

	var resp ListResponse
	if err := c.getJSON(ctx, "/danh-sach/phim-moi-cap-nhat", query, &resp); err != nil {
		return nil, fmt.Errorf("list new movies page %d: %w", page, err)
	}
	return &resp, nil
}

// GetMovieDetail fetches a movie with its episodes. An unknown slug yields
// domain.ErrMovieNotFound.
func (c *Client) GetMovieDetail(ctx context.Context, slug string) (*MovieDetail, error) {
	var detail MovieDetail
	err := c.getJSON(ctx, "/phim/"+url.PathEscape(slug), nil, &detail)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrMovieNotFound, slug)
		}
		return nil, fmt.Errorf("get movie %s: %w", slug, err)
	}
	if !detail.Status || detail.Movie.Slug == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrMovieNotFound, slug)
	}
	return &detail, nil
}

// ListCategories fetches every genre known to the remote catalog.
func (c *Client) ListCategories(ctx context.Context) ([]Taxon, error) {
	return c.listTaxa(ctx, "/the-loai")
}

// ListCountries fetches every country known to the remote catalog.
func (c *Client) ListCountries(ctx context.Context) ([]Taxon, error) {
	return c.listTaxa(ctx, "/quoc-gia")
}

func (c *Client) listTaxa(ctx context.Context, path string) ([]Taxon, error) {
	var entries []catalogEntry
	if err := c.getJSON(ctx, path, nil, &entries); err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	taxa := make([]Taxon, len(entries))
	for i, e := range entries {
		taxa[i] = Taxon{ID: e.ID, Name: e.Name, Slug: e.Slug}
	}
	return taxa, nil
}

// Ping measures the latency of fetching the first listing page.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := c.ListNewMovies(ctx, 1); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// getJSON issues a rate limited GET and decodes the body into dst. Network
// errors and 5xx responses are retried; 4xx and decode failures are not.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			return c.do(ctx, endpoint, dst)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("retrying request",
				zap.String("url", endpoint),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
}

func (c *Client) do(ctx context.Context, endpoint string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: endpoint}
		if resp.StatusCode >= 500 {
			return statusErr
		}
		return retry.Unrecoverable(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return retry.Unrecoverable(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
