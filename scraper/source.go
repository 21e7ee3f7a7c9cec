package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"realestate-pipeline/models"
	"realestate-pipeline/utils"
)

// Source is the collaborator contract the pipeline consumes. A source owns
// its own fetching, pacing and retries; the URLs it returns must be unique
// within one Fetch call.
type Source interface {
	Name() string
	Fetch(ctx context.Context, pages int) ([]*models.RawListing, error)
}

// mockHTML is returned for any "mock" URL so sources can run without
// touching the network.
const mockHTML = `<html><body><div class='mock'>Fake Data</div></body></html>`

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) RealEstateBot/1.0"

// Client fetches listing pages over HTTP with rate-limit pacing and
// transient-failure retries applied to every call.
type Client struct {
	httpClient *http.Client
	limiter    *utils.RateLimiter
	retry      *utils.RetryConfig
	logger     *utils.Logger
	userAgent  string
}

// NewClient builds a Client combining the given pacing and retry policies.
func NewClient(limiter *utils.RateLimiter, retry *utils.RetryConfig, logger *utils.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
		retry:      retry,
		logger:     logger,
		userAgent:  defaultUserAgent,
	}
}

// FetchPage GETs a page and returns its body. URLs containing "mock" are
// served a canned response so simulated sources stay offline. Each attempt
// is paced by the rate limiter; transient failures are retried per the
// retry policy; HTTP 4xx (except 429) fails immediately.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	if strings.Contains(pageURL, "mock") {
		return mockHTML, nil
	}

	c.logger.Info("[fetch] GET %s", pageURL)

	var body string
	err := c.retry.Do("fetch "+pageURL, func() error {
		c.limiter.Delay()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w: %w", pageURL, err, utils.ErrTransient)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("status %d from %s: %w", resp.StatusCode, pageURL, utils.ErrTransient)
		default:
			return fmt.Errorf("status %d from %s", resp.StatusCode, pageURL)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w: %w", err, utils.ErrTransient)
		}
		body = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}
