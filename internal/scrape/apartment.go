package scrape

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/normalize"
	"github.com/salimhm/zillow-scraper/internal/payload"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// buildingStrategies locate the building payload on apartment pages.
var buildingStrategies = []payload.PathStrategy{
	{Name: "redux-gdp", Path: []string{"componentProps", "initialReduxState", "gdp", "building"}},
	{Name: "top-level", Path: []string{"building"}},
	{Name: "property", Path: []string{"property"}},
}

// ApartmentDetails scrapes an apartment or building listing page.
func (s *Listings) ApartmentDetails(ctx context.Context, target string) (domain.ApartmentDetails, error) {
	if err := validateSiteURL(target); err != nil {
		return domain.ApartmentDetails{}, err
	}

	doc, err := s.fetcher.GetDocument(ctx, target, nil, true)
	if err != nil {
		return domain.ApartmentDetails{}, err
	}

	details := domain.ApartmentDetails{
		URL:       target,
		Units:     []any{},
		Amenities: []string{},
		Photos:    []string{},
	}

	if root, ok := payload.Locate(doc); ok {
		if building, _ := payload.FirstMap(root, buildingStrategies); building != nil {
			fillFromBuilding(&details, building)
		}
	}

	fillFromBuildingMarkup(&details, doc)

	if details.Name == "" {
		return domain.ApartmentDetails{}, scrapeerr.NotFoundf("apartment details not found at %s", target)
	}
	return details, nil
}

func fillFromBuilding(details *domain.ApartmentDetails, building map[string]any) {
	street := stringAt(building, "streetAddress")

	details.Name = stringAt(building, "buildingName")
	if details.Name == "" {
		details.Name = street
	}
	details.Description = normalize.CleanText(stringAt(building, "description"))

	details.Address = stringAt(building, "fullAddress")
	if details.Address == "" && street != "" {
		details.Address = detailAddress(building)
	}

	// Amenities arrive grouped by category.
	if categories, ok := building["structuredAmenities"].([]any); ok {
		for _, rawCategory := range categories {
			items, ok := payload.DigList(rawCategory, "items")
			if !ok {
				continue
			}
			for _, rawItem := range items {
				if text, ok := payload.String(payload.Dig(rawItem, "text")); ok && text != "" {
					details.Amenities = append(details.Amenities, text)
				}
			}
		}
	}

	details.Photos = buildingPhotos(building)

	if units, ok := building["floorPlans"].([]any); ok && len(units) > 0 {
		details.Units = units
	} else if units, ok := building["ungroupedUnits"].([]any); ok && len(units) > 0 {
		details.Units = units
	}
}

// buildingPhotos prefers the largest jpeg rendition of each photo.
func buildingPhotos(building map[string]any) []string {
	photoList, ok := building["photos"].([]any)
	if !ok || len(photoList) == 0 {
		photoList, _ = building["galleryPhotos"].([]any)
	}

	photos := []string{}
	for _, raw := range photoList {
		photo, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if jpegs, ok := payload.DigList(photo, "mixedSources", "jpeg"); ok {
			if url, ok := payload.String(payload.Dig(jpegs[len(jpegs)-1], "url")); ok && url != "" {
				photos = append(photos, url)
				continue
			}
		}
		if url, ok := payload.String(photo["url"]); ok && url != "" {
			photos = append(photos, url)
		}
	}
	return photos
}

// fillFromBuildingMarkup backfills name and address from visible markup.
func fillFromBuildingMarkup(details *domain.ApartmentDetails, doc *goquery.Document) {
	if details.Name == "" {
		details.Name = normalize.CleanText(doc.Find(`h1, [data-test="building-name"]`).First().Text())
	}
	if details.Address == "" {
		details.Address = normalize.CleanText(doc.Find(`[data-test="building-address"], address`).First().Text())
	}
}
