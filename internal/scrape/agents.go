package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/logger"
	"github.com/salimhm/zillow-scraper/internal/normalize"
	"github.com/salimhm/zillow-scraper/internal/payload"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// agentDirectoryStrategies locate the agent directory display object,
// which carries the result metadata alongside the search results.
var agentDirectoryStrategies = []payload.PathStrategy{
	{Name: "page-props", Path: []string{"props", "pageProps", "displayData", "agentDirectoryFinderDisplay"}},
	{Name: "display-data", Path: []string{"displayData", "agentDirectoryFinderDisplay"}},
}

// agentListKeys are the keys that may hold the agent card list inside the
// directory search results, tried in order. A dict value is searched again
// under the nested sub-keys.
var (
	agentListKeys    = []string{"results", "professionals", "agents", "items", "listResults", "professionalCards"}
	agentListSubKeys = []string{"resultsCards", "professionalCards", "cards", "professionals", "items", "list", "data"}
)

// agentFallbackStrategies are flat locations tried when the directory
// display is absent.
var agentFallbackStrategies = []payload.PathStrategy{
	{Name: "search-professionals", Path: []string{"searchResults", "professionals"}},
	{Name: "professionals", Path: []string{"professionals"}},
	{Name: "agents", Path: []string{"agents"}},
	{Name: "results", Path: []string{"results"}},
}

var profileSlugRe = regexp.MustCompile(`/profile/([^/]+)`)

// Profile-page regex fallbacks, applied to visible text when the payload
// carries no professional data.
var (
	ratingNearReviewsRe = regexp.MustCompile(`(?i)(\d\.\d)\s*[★⭐]?\s*[\d,]+\s*(?:team\s+)?reviews?`)
	reviewsCountRe      = regexp.MustCompile(`(?i)([\d,]+)\s*(?:team\s+)?reviews?`)
	salesLast12Re       = regexp.MustCompile(`(?i)([\d,]+)\s*(?:team\s+)?sales?\s+last\s+12\s+months`)
	totalSalesRe        = regexp.MustCompile(`(?i)([\d,]+)\s*(?:total\s+)?sales\s+in`)
	priceRangeRe        = regexp.MustCompile(`(?i)\$[\d.]+[KM]?\s*-\s*\$[\d.]+[KM]?\s*(?:team\s+)?price\s+range`)
	priceRangeLabelRe   = regexp.MustCompile(`(?i)\s*(?:team\s+)?price\s+range`)
	firstDecimalRe      = regexp.MustCompile(`\d+\.?\d*`)
	metaBrokerageRe     = regexp.MustCompile(`like\s+.*?of\s+([A-Z][a-zA-Z0-9\s&]+)`)
)

var bioBrokerageRes = []*regexp.Regexp{
	regexp.MustCompile(`of\s+([A-Z][a-zA-Z0-9\s&]{2,30})\s*,`),
	regexp.MustCompile(`at\s+([A-Z][a-zA-Z0-9\s&]{2,30})`),
	regexp.MustCompile(`Brokered by\s+([A-Z][a-zA-Z0-9\s&]{2,30})`),
}

// Agents scrapes the agent directory, profiles, reviews, and listings.
type Agents struct {
	fetcher Fetcher
	log     logger.Interface
}

// NewAgents creates an agent scraper on top of the resilient fetcher.
func NewAgents(fetcher Fetcher, log logger.Interface) *Agents {
	return &Agents{fetcher: fetcher, log: log.WithComponent("agents")}
}

// ByLocation lists agents serving a location slug like "seattle-wa".
func (s *Agents) ByLocation(ctx context.Context, location string, page int) (domain.ResultPage[domain.Agent], error) {
	if location == "" {
		return domain.ResultPage[domain.Agent]{}, scrapeerr.Validation("location is required")
	}

	target := baseURL + "/professionals/real-estate-agent-reviews/" + url.PathEscape(location) + "/"
	if page > 1 {
		target += "?page=" + strconv.Itoa(page)
	}

	doc, err := s.fetcher.GetDocument(ctx, target, nil, true)
	if err != nil {
		return domain.ResultPage[domain.Agent]{}, err
	}

	agents, total := extractAgents(doc, location)
	if len(agents) == 0 {
		agents = agentsFromProfileLinks(doc, location)
	}
	if len(agents) == 0 {
		return domain.ResultPage[domain.Agent]{}, scrapeerr.NotFoundf("no agents found for location %s", location)
	}

	s.log.Info("agent directory parsed", "location", location, "agents", len(agents), "total", total)

	result := domain.NewResultPage(agents, total, page, domain.DefaultPerPage)
	result.SourceURL = target
	return result, nil
}

// extractAgents walks the payload strategies for agent cards and returns
// them with the directory's reported total, when present.
func extractAgents(doc *goquery.Document, location string) ([]domain.Agent, int) {
	root, ok := payload.Locate(doc)
	if !ok {
		return nil, 0
	}

	total := 0
	if display, _ := payload.FirstMap(root, agentDirectoryStrategies); display != nil {
		if n, ok := payload.Int(display["totalResultCount"]); ok {
			total = int(n)
		}

		if results, ok := payload.DigMap(display, "searchResults"); ok {
			if agents := agentsFromResults(results, location); len(agents) > 0 {
				return agents, total
			}
		}
	}

	for _, strategy := range agentFallbackStrategies {
		if cards, ok := payload.DigList(root, strategy.Path...); ok {
			if agents := agentsFromCards(cards, location); len(agents) > 0 {
				return agents, total
			}
		}
	}
	return nil, total
}

func agentsFromResults(results map[string]any, location string) []domain.Agent {
	for _, key := range agentListKeys {
		switch value := results[key].(type) {
		case []any:
			if agents := agentsFromCards(value, location); len(agents) > 0 {
				return agents
			}
		case map[string]any:
			for _, subKey := range agentListSubKeys {
				if cards, ok := value[subKey].([]any); ok && len(cards) > 0 {
					if agents := agentsFromCards(cards, location); len(agents) > 0 {
						return agents
					}
				}
			}
		}
	}
	return nil
}

func agentsFromCards(cards []any, location string) []domain.Agent {
	var agents []domain.Agent
	for _, raw := range cards {
		card, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if agent, ok := normalize.AgentFromCard(card, location); ok {
			agents = append(agents, agent)
		}
	}
	return agents
}

// agentsFromProfileLinks synthesizes minimal records from profile links in
// the markup, the last resort when no payload parsed.
func agentsFromProfileLinks(doc *goquery.Document, location string) []domain.Agent {
	seen := map[string]bool{}
	var agents []domain.Agent

	doc.Find(`a[href*="/profile/"]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		match := profileSlugRe.FindStringSubmatch(href)
		if match == nil || seen[match[1]] {
			return
		}
		seen[match[1]] = true

		if !strings.HasPrefix(href, "http") {
			href = baseURL + href
		}
		agents = append(agents, domain.Agent{
			Name:     titleize(strings.ReplaceAll(match[1], "-", " ")),
			URL:      href,
			Location: titleize(strings.ReplaceAll(location, "-", " ")),
		})
	})
	return agents
}

// profileURL resolves an agent reference (screen name or full profile URL)
// to a profile URL with the given sub-path appended.
func profileURL(ref, subPath string) (string, error) {
	if ref == "" {
		return "", scrapeerr.Validation("agent screen name or profile url is required")
	}
	if strings.HasPrefix(ref, "http") {
		return strings.TrimRight(ref, "/") + subPath, nil
	}
	return baseURL + "/profile/" + url.PathEscape(ref) + subPath, nil
}
