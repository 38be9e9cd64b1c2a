package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/payload"
)

var digitsRe = regexp.MustCompile(`\d+`)

var salesInTextRe = regexp.MustCompile(`(?i)(\d+)\s*(?:team\s+)?sales`)

// AgentFromCard maps one raw directory card onto the canonical agent.
// Directory cards mix flat fields with nested review and profile
// sub-structures; priority order per field follows the shapes seen in the
// wild. Returns false for cards without a name or for the directory's own
// help entries, which share the card shape but are not agents.
func AgentFromCard(card map[string]any, fallbackLocation string) (domain.Agent, bool) {
	name := firstString(card, "cardTitle", "fullName", "displayName", "name", "businessName")
	if name == "" {
		return domain.Agent{}, false
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "help finding") || strings.Contains(lower, "get help") {
		return domain.Agent{}, false
	}

	url := firstString(card, "cardActionLink", "profileLink", "profileUrl")
	if url != "" && !strings.Contains(url, "/profile/") {
		return domain.Agent{}, false
	}
	if url == "" {
		if screen := firstString(card, "encodedZuid", "screenName"); screen != "" {
			url = siteBaseURL + "/profile/" + screen + "/"
		}
	}

	agent := domain.Agent{
		Name:         name,
		URL:          absoluteURL(url),
		PhotoURL:     firstString(card, "imageUrl", "logoUrl"),
		Brokerage:    firstString(card, "secondaryCardTitle"),
		Location:     cardLocation(card, fallbackLocation),
		Phone:        firstString(card, "phone"),
		Rating:       cardRating(card),
		ReviewsCount: cardReviewsCount(card),
		SalesCount:   cardSalesCount(card),
		PriceRange:   profileStat(card, "price range"),
		IsTeam:       hasTeamTag(card),
	}
	return agent, true
}

func reviewInfo(card map[string]any) map[string]any {
	info, _ := card["reviewInformation"].(map[string]any)
	return info
}

func cardRating(card map[string]any) *float64 {
	info := reviewInfo(card)
	if r := firstFloat(info, "reviewAverage", "rating"); r != nil {
		return r
	}
	if r := firstFloat(card, "avgRating"); r != nil {
		return r
	}
	// reviewAverageText carries the rating as a display string like "5.0".
	if text, ok := payload.String(info["reviewAverageText"]); ok {
		if f, ok := payload.Float(text); ok {
			return &f
		}
	}
	return nil
}

// cardReviewsCount prefers the display text "(1595)" over the raw fields.
func cardReviewsCount(card map[string]any) *int {
	info := reviewInfo(card)
	if text, ok := payload.String(info["reviewCountText"]); ok {
		if n := CleanNumber(digitsRe.FindString(text)); n != nil {
			return n
		}
	}
	if n := firstInt(info, "reviewCount"); n != nil {
		return n
	}
	return firstInt(card, "numReviews")
}

// cardSalesCount resolves sales from the profile stats, then the card
// tags, then the flat field.
func cardSalesCount(card map[string]any) *int {
	switch profile := card["profileData"].(type) {
	case map[string]any:
		if n := firstInt(profile, "salesLast12Months", "recentSalesCount"); n != nil {
			return n
		}
	case []any:
		if data := statFromList(profile, func(label string) bool {
			return strings.Contains(label, "sales") && strings.Contains(label, "12")
		}); data != "" {
			if n := CleanNumber(data); n != nil {
				return n
			}
		}
	}

	if tags, ok := card["tags"].([]any); ok {
		for _, raw := range tags {
			tag, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			text, _ := payload.String(tag["text"])
			if match := salesInTextRe.FindStringSubmatch(text); match != nil {
				if n := CleanNumber(match[1]); n != nil {
					return n
				}
			}
		}
	}

	return firstInt(card, "salesLast12Months")
}

func cardLocation(card map[string]any, fallback string) string {
	if profile, ok := card["profileData"].(map[string]any); ok {
		if s := firstString(profile, "location"); s != "" {
			return s
		}
	}
	if s := firstString(card, "location"); s != "" {
		return s
	}
	return titleizeSlug(fallback)
}

// profileStat finds a labeled stat (e.g. "price range") in the list-shaped
// profileData.
func profileStat(card map[string]any, labelSubstr string) string {
	profile, ok := card["profileData"].([]any)
	if !ok {
		return ""
	}
	return statFromList(profile, func(label string) bool {
		return strings.Contains(label, labelSubstr)
	})
}

func statFromList(items []any, matches func(label string) bool) string {
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		label, _ := payload.String(item["label"])
		if matches(strings.ToLower(label)) {
			data, _ := payload.String(item["data"])
			return data
		}
	}
	return ""
}

func hasTeamTag(card map[string]any) bool {
	tags, ok := card["tags"].([]any)
	if !ok {
		return false
	}
	for _, raw := range tags {
		if tag, ok := raw.(map[string]any); ok {
			if text, _ := payload.String(tag["text"]); strings.EqualFold(text, "TEAM") {
				return true
			}
		}
	}
	return false
}

// titleizeSlug turns a location slug like "seattle-wa" into "Seattle Wa".
func titleizeSlug(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w != "" {
			first, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(first)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}
