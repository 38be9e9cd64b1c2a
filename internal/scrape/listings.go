package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/logger"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// Listing type slugs accepted by the search operations.
const (
	ListTypeForSale = "for-sale"
	ListTypeForRent = "for-rent"
	ListTypeSold    = "sold"
)

// coordinateBoxDelta is the half-width in degrees of the bounding box
// synthesized around a coordinate search, roughly 3.5 miles.
const coordinateBoxDelta = 0.05

var pageInURL = regexp.MustCompile(`/(\d+)_p/`)

// Listings scrapes property search results and detail pages.
type Listings struct {
	fetcher Fetcher
	log     logger.Interface
}

// NewListings creates a property scraper on top of the resilient fetcher.
func NewListings(fetcher Fetcher, log logger.Interface) *Listings {
	return &Listings{fetcher: fetcher, log: log.WithComponent("listings")}
}

// SearchByLocation searches properties for a location slug like
// "seattle-wa".
func (s *Listings) SearchByLocation(ctx context.Context, location, listType string, page int, filters SearchFilters) (domain.ResultPage[domain.Listing], error) {
	if location == "" {
		return domain.ResultPage[domain.Listing]{}, scrapeerr.Validation("location is required")
	}

	target := buildSearchURL(location, listType, page)
	return s.searchPage(ctx, target, page, location)
}

// SearchByCoordinates searches properties around a point by synthesizing a
// small bounding box.
func (s *Listings) SearchByCoordinates(ctx context.Context, lat, lng float64, listType string, page int, filters SearchFilters) (domain.ResultPage[domain.Listing], error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.ResultPage[domain.Listing]{}, scrapeerr.Validationf("coordinates out of range: %f,%f", lat, lng)
	}

	return s.SearchByMapBounds(ctx,
		lat+coordinateBoxDelta, lat-coordinateBoxDelta,
		lng+coordinateBoxDelta, lng-coordinateBoxDelta,
		listType, page, filters)
}

// SearchByMapBounds searches properties inside an explicit viewport.
func (s *Listings) SearchByMapBounds(ctx context.Context, north, south, east, west float64, listType string, page int, filters SearchFilters) (domain.ResultPage[domain.Listing], error) {
	if north <= south || east <= west {
		return domain.ResultPage[domain.Listing]{}, scrapeerr.Validation("map bounds are inverted")
	}

	queryState := map[string]any{
		"mapBounds": map[string]any{
			"north": north,
			"south": south,
			"east":  east,
			"west":  west,
		},
		"isMapVisible":  true,
		"filterState":   filters.FilterState(),
		"isListVisible": true,
	}
	if page > 1 {
		queryState["pagination"] = map[string]any{"currentPage": page}
	}

	encoded, err := json.Marshal(queryState)
	if err != nil {
		return domain.ResultPage[domain.Listing]{}, fmt.Errorf("encode query state: %w", err)
	}

	query := url.Values{"searchQueryState": []string{string(encoded)}}
	target := baseURL + "/homes/?" + query.Encode()
	return s.searchPage(ctx, target, page, "map bounds")
}

// SearchByPolygon searches properties inside a polygon given as
// "lat,lng;lat,lng;..." with at least three points. The polygon is reduced
// to its bounding box.
func (s *Listings) SearchByPolygon(ctx context.Context, polygon, listType string, page int, filters SearchFilters) (domain.ResultPage[domain.Listing], error) {
	north, south, east, west, err := polygonBounds(polygon)
	if err != nil {
		return domain.ResultPage[domain.Listing]{}, err
	}
	return s.SearchByMapBounds(ctx, north, south, east, west, listType, page, filters)
}

// SearchByMLSID resolves an MLS listing id through the site's search.
func (s *Listings) SearchByMLSID(ctx context.Context, mlsID string, page int) (domain.ResultPage[domain.Listing], error) {
	if mlsID == "" {
		return domain.ResultPage[domain.Listing]{}, scrapeerr.Validation("mls id is required")
	}

	target := baseURL + "/homes/" + url.PathEscape(mlsID) + "/"
	if page > 1 {
		target += strconv.Itoa(page) + "_p/"
	}
	return s.searchPage(ctx, target, page, mlsID)
}

// SearchByURL parses an arbitrary site URL: a detail page yields a single
// full listing, anything else is treated as a results page. The current
// page is recovered from the "/N_p/" URL segment when the payload omits it.
func (s *Listings) SearchByURL(ctx context.Context, target string) (domain.ResultPage[domain.Listing], error) {
	if err := validateSiteURL(target); err != nil {
		return domain.ResultPage[domain.Listing]{}, err
	}

	doc, err := s.fetcher.GetDocument(ctx, target, nil, true)
	if err != nil {
		return domain.ResultPage[domain.Listing]{}, err
	}

	if strings.Contains(target, "/homedetails/") {
		listing, ok := parsePropertyDetails(doc, target)
		if !ok {
			return domain.ResultPage[domain.Listing]{}, scrapeerr.NotFoundf("no property details found at %s", target)
		}
		page := domain.NewResultPage([]domain.Listing{listing}, 1, 1, domain.DefaultPerPage)
		page.SourceURL = target
		return page, nil
	}

	outcome := parseSearchResults(doc)
	if len(outcome.listings) == 0 {
		return domain.ResultPage[domain.Listing]{}, scrapeerr.NotFoundf("no properties found at %s", target)
	}

	currentPage := outcome.currentPage
	if currentPage <= 1 {
		if match := pageInURL.FindStringSubmatch(target); match != nil {
			currentPage, _ = strconv.Atoi(match[1])
		}
	}

	page := domain.NewResultPage(outcome.listings, outcome.total, currentPage, domain.DefaultPerPage)
	page.SourceURL = target
	return page, nil
}

// searchPage fetches one search results page and aggregates it.
func (s *Listings) searchPage(ctx context.Context, target string, page int, subject string) (domain.ResultPage[domain.Listing], error) {
	doc, err := s.fetcher.GetDocument(ctx, target, nil, true)
	if err != nil {
		return domain.ResultPage[domain.Listing]{}, err
	}

	outcome := parseSearchResults(doc)
	if len(outcome.listings) == 0 {
		return domain.ResultPage[domain.Listing]{}, scrapeerr.NotFoundf("no properties found for %s", subject)
	}

	s.log.Info("search page parsed",
		"subject", subject,
		"listings", len(outcome.listings),
		"total", outcome.total,
	)

	result := domain.NewResultPage(outcome.listings, outcome.total, page, domain.DefaultPerPage)
	result.SourceURL = target
	return result, nil
}

// buildSearchURL composes a location search URL in the site's slug format.
func buildSearchURL(location, listType string, page int) string {
	path := "/homes/"
	if location != "" {
		path = "/" + strings.Trim(location, "/") + "/"
	}

	switch listType {
	case ListTypeForRent:
		path += "rentals/"
	case ListTypeSold:
		path += "sold/"
	}

	if page > 1 {
		path += strconv.Itoa(page) + "_p/"
	}
	return baseURL + path
}

// polygonBounds parses a "lat,lng;lat,lng;..." polygon and returns its
// bounding box.
func polygonBounds(polygon string) (north, south, east, west float64, err error) {
	var lats, lngs []float64
	for _, point := range strings.Split(polygon, ";") {
		parts := strings.Split(strings.TrimSpace(point), ",")
		if len(parts) != 2 {
			continue
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if latErr != nil || lngErr != nil {
			return 0, 0, 0, 0, scrapeerr.Validationf("invalid polygon point %q", point)
		}
		lats = append(lats, lat)
		lngs = append(lngs, lng)
	}

	if len(lats) < 3 {
		return 0, 0, 0, 0, scrapeerr.Validation("polygon must have at least 3 points")
	}

	north, south = lats[0], lats[0]
	for _, lat := range lats[1:] {
		north = max(north, lat)
		south = min(south, lat)
	}
	east, west = lngs[0], lngs[0]
	for _, lng := range lngs[1:] {
		east = max(east, lng)
		west = min(west, lng)
	}
	return north, south, east, west, nil
}

func validateSiteURL(target string) error {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return scrapeerr.Validationf("invalid url: %q", target)
	}
	return nil
}
