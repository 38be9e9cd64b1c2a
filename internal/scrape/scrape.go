// Package scrape implements the entity scrapers: property search in its
// several addressing modes, property and apartment details, location
// autocomplete, and the agent directory, profile, review, and listing
// operations. Each scraper fetches through the resilient client, locates
// the embedded payload, and normalizes whatever shape the page served.
package scrape

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/fetch"
)

const baseURL = "https://www.zillow.com"

// Fetcher is the slice of the resilient client the scrapers need.
// *fetch.Client satisfies it; tests substitute canned documents.
type Fetcher interface {
	Get(ctx context.Context, target string, query url.Values, useProxy bool) (*fetch.Response, error)
	Post(ctx context.Context, target string, body []byte, useProxy bool) (*fetch.Response, error)
	GetDocument(ctx context.Context, target string, query url.Values, useProxy bool) (*goquery.Document, error)
}

var _ Fetcher = (*fetch.Client)(nil)
