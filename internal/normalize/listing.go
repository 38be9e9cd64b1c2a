package normalize

import (
	"fmt"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/payload"
)

// ListingFromCard maps one raw property card onto the canonical listing.
// Field names vary across page templates; each canonical field is resolved
// from its candidates in fixed priority order. Returns false when the card
// carries neither an address nor a derivable property id.
func ListingFromCard(card map[string]any) (domain.Listing, bool) {
	url := absoluteURL(firstString(card, "detailUrl", "listing_url", "home_details_url"))

	listing := domain.Listing{
		Address:      cardAddress(card),
		URL:          url,
		PhotoURL:     firstString(card, "primary_photo_url", "imgSrc", "image_url", "medium_image_url"),
		Price:        cardPrice(card),
		Beds:         firstInt(card, "beds", "bedrooms"),
		Baths:        firstInt(card, "baths", "bathrooms"),
		Sqft:         firstInt(card, "area", "livingArea", "livingAreaValue"),
		PropertyType: firstString(card, "propertyType", "home_type"),
		Status:       firstString(card, "statusType", "status", "home_marketing_status", "sold_date"),
		Latitude:     firstFloat(card, "latitude"),
		Longitude:    firstFloat(card, "longitude"),
		Brokerage:    cardBrokerage(card),
	}

	if id, ok := payload.Int(card["zpid"]); ok {
		listing.ZPID = &id
	} else {
		listing.ZPID = ZPIDFromURL(url)
	}

	if listing.Address == "" && listing.ZPID == nil {
		return domain.Listing{}, false
	}
	return listing, true
}

// cardAddress handles the three address shapes: a plain string, an object
// with line1/line2, or separate street and city-state fields.
func cardAddress(card map[string]any) string {
	switch addr := card["address"].(type) {
	case string:
		if addr != "" {
			return addr
		}
	case map[string]any:
		line1, _ := payload.String(addr["line1"])
		line2, _ := payload.String(addr["line2"])
		return joinParts(line1, line2)
	}

	if s := firstString(card, "streetAddress"); s != "" {
		return s
	}
	return joinParts(
		firstString(card, "street_address"),
		firstString(card, "city_state_zipcode"),
	)
}

// cardPrice accepts either a formatted price string or a raw number.
func cardPrice(card map[string]any) *float64 {
	for _, key := range []string{"price", "unformattedPrice"} {
		switch v := card[key].(type) {
		case string:
			if p := CleanPrice(v); p != nil {
				return p
			}
		case float64:
			return &v
		}
	}
	return nil
}

// cardBrokerage checks flat fields first, then the nested attribution
// object.
func cardBrokerage(card map[string]any) string {
	if s := firstString(card, "brokerage_name", "brokerName", "brokerageName", "listingProvider"); s != "" {
		return s
	}
	if attribution, ok := card["attributionInfo"].(map[string]any); ok {
		return firstString(attribution, "brokerName", "agentName", "listingOffice")
	}
	return ""
}

func joinParts(a, b string) string {
	if a != "" && b != "" {
		return fmt.Sprintf("%s, %s", a, b)
	}
	if a != "" {
		return a
	}
	return b
}
