package scrape

import (
	"context"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/payload"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// agentListingKeys maps a listing type to the payload keys that may hold
// the list, tried in order.
var agentListingKeys = map[string][]string{
	ListTypeForSale: {"forSaleListings", "listings", "properties"},
	ListTypeForRent: {"forRentListings", "listings", "properties"},
	ListTypeSold:    {"pastSales", "soldListings", "listings"},
}

var agentListingPaths = map[string]string{
	ListTypeForSale: "/listings/for-sale/",
	ListTypeForRent: "/listings/for-rent/",
	ListTypeSold:    "/listings/sold/",
}

// Listings scrapes an agent's property listings of the given type. When
// the dedicated listings sub-page fails to fetch, the main profile page is
// tried instead since it embeds the same payload keys.
func (s *Agents) Listings(ctx context.Context, ref, listType string, page int) (domain.ResultPage[domain.Listing], error) {
	path, ok := agentListingPaths[listType]
	if !ok {
		path = agentListingPaths[ListTypeForSale]
		listType = ListTypeForSale
	}

	target, err := profileURL(ref, path)
	if err != nil {
		return domain.ResultPage[domain.Listing]{}, err
	}
	if page > 1 {
		target += "?page=" + strconv.Itoa(page)
	}

	doc, err := s.fetcher.GetDocument(ctx, target, nil, true)
	if err != nil {
		fallback, urlErr := profileURL(ref, "/")
		if urlErr != nil {
			return domain.ResultPage[domain.Listing]{}, err
		}
		s.log.Warn("listings page failed, falling back to profile", "ref", ref, "error", err.Error())

		target = fallback
		doc, err = s.fetcher.GetDocument(ctx, target, nil, true)
		if err != nil {
			return domain.ResultPage[domain.Listing]{}, err
		}
	}

	listings, total := extractAgentListings(doc, listType)
	if len(listings) == 0 {
		listings = listingsFromMarkup(doc)
	}
	if len(listings) == 0 {
		return domain.ResultPage[domain.Listing]{}, scrapeerr.NotFoundf("no %s listings found for agent", listType)
	}

	result := domain.NewResultPage(listings, total, page, domain.DefaultPerPage)
	result.SourceURL = target
	return result, nil
}

// extractAgentListings resolves the listing list for listType. Each
// candidate key may hold the list directly or a container object carrying
// the list and its total.
func extractAgentListings(doc *goquery.Document, listType string) ([]domain.Listing, int) {
	root, ok := payload.Locate(doc)
	if !ok {
		return nil, 0
	}

	for _, key := range agentListingKeys[listType] {
		var cards []any
		total := 0

		switch found := payload.Dig(root, key).(type) {
		case []any:
			cards = found
		case map[string]any:
			if list, ok := found["listings"].([]any); ok {
				cards = list
			} else if list, ok := found["past_sales"].([]any); ok {
				cards = list
			}
			if n, ok := payload.Int(firstPresent(found, "totalCount", "totalResultCount", "count")); ok {
				total = int(n)
			}
		}

		if listings := listingsFromCards(cards); len(listings) > 0 {
			return listings, total
		}
	}
	return nil, 0
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
