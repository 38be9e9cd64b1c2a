// Package fetch implements the resilient HTTP fetcher: one logical fetch
// backed by identity rotation, proxy selection, response classification,
// and bounded jittered retries.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/identity"
	"github.com/salimhm/zillow-scraper/internal/logger"
	"github.com/salimhm/zillow-scraper/internal/proxy"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// DefaultTimeout bounds each individual fetch attempt.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the retry ceiling for retryable classifications.
const DefaultMaxRetries = 3

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// Config controls fetch behavior.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	DelayMin   time.Duration
	DelayMax   time.Duration
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.DelayMin <= 0 {
		c.DelayMin = DefaultDelayMin
	}
	if c.DelayMax < c.DelayMin {
		c.DelayMax = DefaultDelayMax
	}
	return c
}

// Request describes one logical fetch.
type Request struct {
	Method   string
	URL      string
	Query    url.Values
	Body     []byte // sent as JSON when non-nil
	UseProxy bool
}

// Response is the raw outcome of a successful fetch.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client performs resilient fetches. Safe for concurrent use; the only
// shared state (proxy cursor and blacklist) lives behind the supplier.
type Client struct {
	identities *identity.Rotator
	proxies    proxy.Supplier
	cfg        Config
	log        logger.Interface

	// Injectable for deterministic tests.
	sleep     func(time.Duration)
	randFloat func() float64
}

// NewClient creates a fetcher using the given identity rotator and proxy
// supplier.
func NewClient(identities *identity.Rotator, proxies proxy.Supplier, cfg Config, log logger.Interface) *Client {
	return &Client{
		identities: identities,
		proxies:    proxies,
		cfg:        cfg.withDefaults(),
		log:        log,
		sleep:      time.Sleep,
		randFloat:  defaultRandFloat,
	}
}

// SetSleeper overrides the backoff sleep. Test hook.
func (c *Client) SetSleeper(sleep func(time.Duration)) {
	c.sleep = sleep
}

// Fetch performs one logical fetch with retries. Blocked, transport, and
// generic fetch failures are retried up to the ceiling with a jittered
// delay between attempts; a 404 short-circuits immediately because
// retrying cannot change the outcome. Once the ceiling is exhausted the
// last classified failure is wrapped in a ScrapeFailed error.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.backoff()
		}
		attempts++

		resp, endpoint, err := c.attempt(ctx, req)
		if err == nil {
			c.proxies.MarkSuccess(ctx, endpoint)
			return resp, nil
		}

		if !scrapeerr.IsRetryable(err) {
			// Terminal classifications (404) are not the proxy's fault and
			// never retried.
			return nil, err
		}

		c.proxies.MarkFailed(ctx, endpoint)

		lastErr = err
		c.log.Warn("fetch attempt failed",
			"url", req.URL,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"error", err.Error(),
		)
	}

	c.log.Error("fetch failed after retries", "url", req.URL, "attempts", attempts)
	return nil, &scrapeerr.ScrapeFailed{URL: req.URL, Attempts: attempts, Cause: lastErr}
}

// attempt issues a single HTTP request and classifies the outcome. It
// returns the proxy endpoint used so the caller can record the result.
func (c *Client) attempt(ctx context.Context, req Request) (*Response, string, error) {
	endpoint := ""
	if req.UseProxy {
		selected, err := c.proxies.Get(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("select proxy: %w", err)
		}
		endpoint = selected
	}

	httpClient, err := c.newHTTPClient(endpoint)
	if err != nil {
		return nil, endpoint, err
	}

	target := req.URL
	if len(req.Query) > 0 {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + req.Query.Encode()
	}

	var bodyReader io.Reader = http.NoBody
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, endpoint, fmt.Errorf("create request: %w", err)
	}

	c.setHeaders(httpReq)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, doErr := httpClient.Do(httpReq)
	if doErr != nil {
		return nil, endpoint, fmt.Errorf("%w: %v", scrapeerr.ErrTransport, doErr)
	}
	defer resp.Body.Close()

	if classifyErr := classifyStatus(resp.StatusCode, req.URL); classifyErr != nil {
		return nil, endpoint, classifyErr
	}

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes)
	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return nil, endpoint, fmt.Errorf("%w: read response body: %v", scrapeerr.ErrTransport, readErr)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, endpoint, nil
}

// classifyStatus maps an HTTP status onto the error taxonomy.
func classifyStatus(status int, target string) error {
	switch {
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: http 403 for %s", scrapeerr.ErrBlocked, target)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: http 429 for %s", scrapeerr.ErrBlocked, target)
	case status == http.StatusNotFound:
		return scrapeerr.NotFoundf("resource not found: %s", target)
	case status < 200 || status >= 300:
		return fmt.Errorf("%w: http %d for %s", scrapeerr.ErrFetch, status, target)
	default:
		return nil
	}
}

// newHTTPClient builds a per-attempt client. Keep-alives are disabled so a
// rotating proxy can hand out a fresh exit IP on every request.
func (c *Client) newHTTPClient(endpoint string) (*http.Client, error) {
	transport := &http.Transport{DisableKeepAlives: true}

	if endpoint != "" {
		proxyURL, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse proxy endpoint: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{Transport: transport, Timeout: c.cfg.Timeout}, nil
}

// setHeaders applies browser-realistic headers with a fresh identity draw.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.identities.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "close")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Cache-Control", "max-age=0")
}

// Get performs a GET fetch.
func (c *Client) Get(ctx context.Context, target string, query url.Values, useProxy bool) (*Response, error) {
	return c.Fetch(ctx, Request{Method: http.MethodGet, URL: target, Query: query, UseProxy: useProxy})
}

// Post performs a POST fetch with a JSON body.
func (c *Client) Post(ctx context.Context, target string, body []byte, useProxy bool) (*Response, error) {
	return c.Fetch(ctx, Request{Method: http.MethodPost, URL: target, Body: body, UseProxy: useProxy})
}

// GetDocument fetches target and parses the body into a goquery document.
// A well-formed page that is actually an anti-bot interstitial is reported
// as blocked.
func (c *Client) GetDocument(ctx context.Context, target string, query url.Values, useProxy bool) (*goquery.Document, error) {
	resp, err := c.Get(ctx, target, query, useProxy)
	if err != nil {
		return nil, err
	}

	doc, parseErr := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if parseErr != nil {
		return nil, fmt.Errorf("parse html: %w", parseErr)
	}

	if blocked := detectBlockPage(doc); blocked != "" {
		return nil, scrapeerr.Blocked(fmt.Sprintf("block page detected (title %q) at %s", blocked, target))
	}

	return doc, nil
}

// blockTitleMarkers are substrings in a page title that identify an
// anti-bot interstitial served with a 200 status.
var blockTitleMarkers = []string{"denied", "blocked", "captcha"}

// detectBlockPage returns the offending title when the document is a block
// page, or "" when it looks legitimate.
func detectBlockPage(doc *goquery.Document) string {
	title := strings.ToLower(strings.TrimSpace(doc.Find("title").First().Text()))
	for _, marker := range blockTitleMarkers {
		if strings.Contains(title, marker) {
			return title
		}
	}
	return ""
}
