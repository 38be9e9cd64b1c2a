package scrape

import (
	"context"
	"encoding/json"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/normalize"
	"github.com/salimhm/zillow-scraper/internal/payload"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// Profile scrapes an agent profile page. ref is either a screen name or a
// full profile URL. Data is layered: the JSON-LD block supplies the
// basics, the professional payload overrides with richer fields, and
// regex scans of visible text backfill whatever is still missing.
func (s *Agents) Profile(ctx context.Context, ref string) (domain.AgentProfile, error) {
	target, err := profileURL(ref, "/")
	if err != nil {
		return domain.AgentProfile{}, err
	}

	doc, err := s.fetcher.GetDocument(ctx, target, nil, true)
	if err != nil {
		return domain.AgentProfile{}, err
	}

	profile := domain.AgentProfile{Agent: domain.Agent{URL: target}}

	fillFromJSONLD(&profile, doc)
	fillFromProfessionalData(&profile, doc)
	fillFromProfileMarkup(&profile, doc)

	if profile.Name == "" {
		return domain.AgentProfile{}, scrapeerr.NotFoundf("agent not found at %s", target)
	}
	return profile, nil
}

// fillFromJSONLD reads the structured-data block. Its content is usually
// HTML-escaped and may be a list of objects.
func fillFromJSONLD(profile *domain.AgentProfile, doc *goquery.Document) {
	raw := strings.TrimSpace(doc.Find(`script[type="application/ld+json"]`).First().Text())
	if raw == "" {
		return
	}

	var parsed any
	if err := json.Unmarshal([]byte(html.UnescapeString(raw)), &parsed); err != nil {
		return
	}
	if list, ok := parsed.([]any); ok && len(list) > 0 {
		parsed = list[0]
	}
	data, ok := parsed.(map[string]any)
	if !ok {
		return
	}

	profile.PhotoURL = stringAt(data, "image")
	profile.Phone = stringAt(data, "telephone")
	if name := stringAt(data, "name"); name != "" {
		profile.Name = name
	}
	profile.Bio = normalize.CleanText(stringAt(data, "description"))

	if addr, ok := data["address"].(map[string]any); ok {
		var parts []string
		for _, key := range []string{"addressLocality", "addressRegion"} {
			if v := stringAt(addr, key); v != "" {
				parts = append(parts, v)
			}
		}
		profile.Location = strings.Join(parts, ", ")
	}

	if rating, ok := payload.DigMap(data, "aggregateRating"); ok {
		if value, ok := payload.Float(rating["ratingValue"]); ok {
			profile.Rating = &value
		}
		if count, ok := payload.Int(rating["ratingCount"]); ok {
			n := int(count)
			profile.ReviewsCount = &n
		}
	}
}

// fillFromProfessionalData overlays fields from the profile payload.
func fillFromProfessionalData(profile *domain.AgentProfile, doc *goquery.Document) {
	root, ok := payload.Locate(doc)
	if !ok {
		return
	}

	strategies := []payload.PathStrategy{
		{Name: "page-props", Path: []string{"props", "pageProps", "displayData", "professionalDataByScreenName"}},
		{Name: "display-data", Path: []string{"displayData", "professionalDataByScreenName"}},
	}
	data, _ := payload.FirstMap(root, strategies)
	if data == nil {
		return
	}

	if name := stringAt(data, "fullName", "displayName"); name != "" {
		profile.Name = name
	}
	if phone := stringAt(data, "phone"); phone != "" {
		profile.Phone = phone
	}
	if brokerage := stringAt(data, "brokerageName", "businessName"); brokerage != "" {
		profile.Brokerage = brokerage
	}
	if rating := floatAt(data, "avgRating", "rating"); rating != nil {
		profile.Rating = rating
	}
	if count := intAt(data, "numTotalReviews", "reviewCount"); count != nil {
		profile.ReviewsCount = count
	}
	if sales := intAt(data, "salesLast12Months"); sales != nil {
		profile.SalesLast12Months = sales
		profile.SalesCount = sales
	}
	if total := intAt(data, "totalSales"); total != nil {
		profile.TotalSales = total
	}
	if bio := normalize.CleanText(stringAt(data, "bio")); bio != "" {
		profile.Bio = bio
	}
	if location := stringAt(data, "location"); location != "" {
		profile.Location = location
	}
}

// fillFromProfileMarkup backfills missing fields from the rendered page.
func fillFromProfileMarkup(profile *domain.AgentProfile, doc *goquery.Document) {
	if profile.Name == "" {
		for _, selector := range []string{"h1", `[data-test="agent-name"]`, ".agent-name", ".profile-name"} {
			if name := normalize.CleanText(doc.Find(selector).First().Text()); len(name) > 1 {
				profile.Name = name
				break
			}
		}
	}

	bodyText := doc.Text()

	if profile.Rating == nil {
		ratingText := doc.Find(`[data-test="rating"], .rating, [class*="rating"]`).First().Text()
		if match := firstDecimalRe.FindString(ratingText); match != "" {
			if f, ok := payload.Float(match); ok {
				profile.Rating = &f
			}
		}
		if profile.Rating == nil {
			if match := ratingNearReviewsRe.FindStringSubmatch(bodyText); match != nil {
				if f, ok := payload.Float(match[1]); ok {
					profile.Rating = &f
				}
			}
		}
	}

	if profile.Brokerage == "" {
		profile.Brokerage = brokerageFromText(profile.Bio, bodyText, doc)
	}

	if profile.ReviewsCount == nil {
		if match := reviewsCountRe.FindStringSubmatch(bodyText); match != nil {
			profile.ReviewsCount = normalize.CleanNumber(match[1])
		}
	}

	if profile.SalesLast12Months == nil {
		if match := salesLast12Re.FindStringSubmatch(bodyText); match != nil {
			profile.SalesLast12Months = normalize.CleanNumber(match[1])
			profile.SalesCount = profile.SalesLast12Months
		}
	}
	if profile.TotalSales == nil {
		if match := totalSalesRe.FindStringSubmatch(bodyText); match != nil {
			profile.TotalSales = normalize.CleanNumber(match[1])
		}
	}

	if profile.PriceRange == "" {
		if match := priceRangeRe.FindString(bodyText); match != "" {
			profile.PriceRange = strings.TrimSpace(priceRangeLabelRe.ReplaceAllString(match, ""))
		}
	}

	if profile.Location == "" {
		profile.Location = normalize.CleanText(doc.Find(`[class*="breadcrumb"]`).First().Text())
	}
}

// brokerageFromText guesses the brokerage from bio phrasing ("of Pardee
// Properties", "at Re/Max") and finally the meta description.
func brokerageFromText(bio, bodyText string, doc *goquery.Document) string {
	source := bio
	if source == "" {
		source = bodyText
	}

	for _, re := range bioBrokerageRes {
		match := re.FindStringSubmatch(source)
		if match == nil {
			continue
		}
		candidate := strings.TrimSpace(match[1])
		if len(candidate) > 3 && len(candidate) < 50 && !strings.Contains(candidate, "Zillow") {
			return candidate
		}
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if match := metaBrokerageRe.FindStringSubmatch(desc); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}
