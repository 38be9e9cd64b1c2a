package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/normalize"
	"github.com/salimhm/zillow-scraper/internal/payload"
)

// searchResultStrategies are the known locations of the search results
// container. Paths are listed most-specific first; the locator may hand us
// either a full document or the pageProps subtree, so both prefixes appear.
var searchResultStrategies = []payload.PathStrategy{
	{Name: "page-props-cat1", Path: []string{"props", "pageProps", "searchPageState", "cat1", "searchResults"}},
	{Name: "page-props-direct", Path: []string{"props", "pageProps", "searchResults"}},
	{Name: "search-page-state", Path: []string{"searchPageState", "cat1", "searchResults"}},
	{Name: "cat1", Path: []string{"cat1", "searchResults"}},
	{Name: "top-level", Path: []string{"searchResults"}},
}

// listingCardSelectors are tried in order when every JSON strategy fails.
var listingCardSelectors = []string{
	`[data-test="property-card"]`,
	".list-card",
	".property-card",
	"article[data-test]",
	`[class*="StyledPropertyCard"]`,
	`li[class*="ListItem"]`,
	`a[href*="/homedetails/"]`,
}

var (
	bedsInDetails  = regexp.MustCompile(`(?i)(\d+)\s*b[de]`)
	bathsInDetails = regexp.MustCompile(`(?i)(\d+)\s*ba`)
	sqftInDetails  = regexp.MustCompile(`(?i)([\d,]+)\s*sq`)
)

// searchOutcome is the raw result of parsing one search page.
type searchOutcome struct {
	listings    []domain.Listing
	total       int
	currentPage int
}

// parseSearchResults extracts listings from a search page: embedded JSON
// first, then the apollo state, then raw markup. The total count is
// resolved from the payload when possible and left at zero otherwise so
// the caller backfills with the observed count.
func parseSearchResults(doc *goquery.Document) searchOutcome {
	outcome := searchOutcome{}

	root, ok := payload.Locate(doc)
	if ok {
		outcome.total = payload.FindTotalCount(root)

		if container, _ := payload.FirstMap(root, searchResultStrategies); container != nil {
			if page, ok := payload.Int(payload.Dig(container, "pagination", "currentPage")); ok {
				outcome.currentPage = int(page)
			} else if page, ok := payload.Int(container["currentPage"]); ok {
				outcome.currentPage = int(page)
			}

			if cards, ok := payload.DigList(container, "listResults"); ok {
				outcome.listings = listingsFromCards(cards)
			}
		}
	}

	if len(outcome.listings) == 0 {
		if apollo, ok := payload.ApolloState(doc); ok {
			outcome.listings = listingsFromApollo(apollo)
		}
	}

	if len(outcome.listings) == 0 {
		outcome.listings = listingsFromMarkup(doc)
	}

	return outcome
}

func listingsFromCards(cards []any) []domain.Listing {
	var listings []domain.Listing
	for _, raw := range cards {
		card, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if listing, ok := normalize.ListingFromCard(card); ok {
			listings = append(listings, listing)
		}
	}
	return listings
}

// listingsFromApollo scans the flat apollo cache for entries that carry a
// property id.
func listingsFromApollo(apollo any) []domain.Listing {
	state, ok := apollo.(map[string]any)
	if !ok {
		return nil
	}

	var listings []domain.Listing
	for _, raw := range state {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, hasID := payload.Int(entry["zpid"]); !hasID {
			continue
		}
		if listing, ok := normalize.ListingFromCard(entry); ok {
			listings = append(listings, listing)
		}
	}
	return listings
}

// listingsFromMarkup builds minimal records from visible card markup, the
// last resort when the page carried no parseable payload.
func listingsFromMarkup(doc *goquery.Document) []domain.Listing {
	var cards *goquery.Selection
	for _, selector := range listingCardSelectors {
		if matched := doc.Find(selector); matched.Length() > 0 {
			cards = matched
			break
		}
	}
	if cards == nil {
		return nil
	}

	var listings []domain.Listing
	cards.Each(func(_ int, card *goquery.Selection) {
		if listing, ok := listingFromCardMarkup(card); ok {
			listings = append(listings, listing)
		}
	})
	return listings
}

func listingFromCardMarkup(card *goquery.Selection) (domain.Listing, bool) {
	addressElem := card.Find(`[data-test="property-card-addr"], .list-card-addr, address, [class*="address"]`).First()
	priceElem := card.Find(`[data-test="property-card-price"], .list-card-price, [class*="price"]`).First()
	linkElem := card.Find(`a[href*="/homedetails/"], a[href*="zpid"]`).First()

	// The card itself may be the detail link.
	if href, ok := card.Attr("href"); ok && strings.Contains(href, "/homedetails/") {
		linkElem = card
	}

	if addressElem.Length() == 0 && linkElem.Length() == 0 {
		return domain.Listing{}, false
	}

	listing := domain.Listing{
		Address: normalize.CleanText(addressElem.Text()),
		Price:   normalize.CleanPrice(priceElem.Text()),
	}

	if href, ok := linkElem.Attr("href"); ok && href != "" {
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}
		listing.URL = href
		listing.ZPID = normalize.ZPIDFromURL(href)
	}

	details := card.Find(`[data-test="property-card-details"], .list-card-details, [class*="details"]`).First().Text()
	if match := bedsInDetails.FindStringSubmatch(details); match != nil {
		listing.Beds = normalize.CleanNumber(match[1])
	}
	if match := bathsInDetails.FindStringSubmatch(details); match != nil {
		listing.Baths = normalize.CleanNumber(match[1])
	}
	if match := sqftInDetails.FindStringSubmatch(details); match != nil {
		listing.Sqft = normalize.CleanNumber(match[1])
	}

	if listing.Address == "" && listing.ZPID == nil {
		return domain.Listing{}, false
	}
	return listing, true
}
