package scrape

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/normalize"
	"github.com/salimhm/zillow-scraper/internal/payload"
)

// parsePropertyDetails extracts a full listing from a detail page payload.
// Newer pages nest the property under componentProps.gdpClientCache, a
// JSON string keyed by query; older pages expose it at the top level.
func parsePropertyDetails(doc *goquery.Document, target string) (domain.Listing, bool) {
	root, ok := payload.Locate(doc)
	if !ok {
		return domain.Listing{}, false
	}

	property := propertyFromGdpCache(root)
	if property == nil {
		for _, key := range []string{"property", "propertyDetails", "listing"} {
			if m, ok := payload.DigMap(root, key); ok && len(m) > 0 {
				property = m
				break
			}
		}
	}
	if property == nil {
		return domain.Listing{}, false
	}

	listing := domain.Listing{
		Address:      detailAddress(property),
		URL:          target,
		PhotoURL:     detailPhoto(property),
		Price:        detailPrice(property),
		PropertyType: stringAt(property, "homeType"),
		Status:       stringAt(property, "homeStatus"),
		Description:  normalize.CleanText(stringAt(property, "description")),
	}

	if id, ok := payload.Int(property["zpid"]); ok {
		listing.ZPID = &id
	} else {
		listing.ZPID = normalize.ZPIDFromURL(target)
	}

	listing.Beds = intAt(property, "bedrooms", "beds")
	listing.Baths = intAt(property, "bathrooms", "baths")
	listing.Sqft = intAt(property, "livingArea", "livingAreaValue")
	listing.YearBuilt = intAt(property, "yearBuilt")
	listing.LotSize = intAt(property, "lotSize")
	listing.Latitude = floatAt(property, "latitude")
	listing.Longitude = floatAt(property, "longitude")

	if attribution, ok := property["attributionInfo"].(map[string]any); ok {
		listing.Brokerage = stringAt(attribution, "brokerName")
	}
	if listing.Brokerage == "" {
		listing.Brokerage = stringAt(property, "brokerageName", "listingProvider")
	}

	if listing.Address == "" && listing.ZPID == nil {
		return domain.Listing{}, false
	}
	return listing, true
}

// propertyFromGdpCache decodes the gdpClientCache JSON string and returns
// the first entry holding a property object.
func propertyFromGdpCache(root any) map[string]any {
	cacheRaw, ok := payload.String(payload.Dig(root, "componentProps", "gdpClientCache"))
	if !ok || cacheRaw == "" {
		return nil
	}

	var cache map[string]any
	if err := json.Unmarshal([]byte(cacheRaw), &cache); err != nil {
		return nil
	}

	for _, entry := range cache {
		if property, ok := payload.DigMap(entry, "property"); ok && len(property) > 0 {
			return property
		}
	}
	return nil
}

// detailAddress composes the address from its components, falling back to
// a flat field.
func detailAddress(property map[string]any) string {
	var parts []string
	for _, key := range []string{"streetAddress", "city", "state", "zipcode"} {
		if v := stringAt(property, key); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return stringAt(property, "address")
}

func detailPrice(property map[string]any) *float64 {
	for _, key := range []string{"price", "zestimate"} {
		switch v := property[key].(type) {
		case float64:
			return &v
		case string:
			if p := normalize.CleanPrice(v); p != nil {
				return p
			}
		}
	}
	return nil
}

// detailPhoto handles the three photo shapes: a direct hi-res link, a list
// of photo objects with nested sources, or a list of plain URLs.
func detailPhoto(property map[string]any) string {
	if link := stringAt(property, "hiResImageLink"); link != "" {
		return link
	}

	photos, ok := property["photos"].([]any)
	if !ok || len(photos) == 0 {
		return ""
	}

	switch first := photos[0].(type) {
	case string:
		return first
	case map[string]any:
		if jpegs, ok := payload.DigList(first, "mixedSources", "jpeg"); ok {
			if url, ok := payload.String(payload.Dig(jpegs[0], "url")); ok {
				return url
			}
		}
	}
	return ""
}

func stringAt(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := payload.String(m[key]); ok && s != "" {
			return s
		}
	}
	return ""
}

func intAt(m map[string]any, keys ...string) *int {
	for _, key := range keys {
		if n, ok := payload.Int(m[key]); ok {
			v := int(n)
			return &v
		}
	}
	return nil
}

func floatAt(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if f, ok := payload.Float(m[key]); ok {
			return &f
		}
	}
	return nil
}
