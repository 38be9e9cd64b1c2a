package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/payload"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

const autocompleteEndpoint = baseURL + "/zg-graph"

const autocompleteQuery = `
query getAutoCompleteResults($query: String!) {
  zgsAutocompleteRequest(query: $query) {
    results {
      display
      resultType
      metaData {
        regionId
        regionType
        city
        state
        county
      }
    }
  }
}`

// Autocomplete resolves location suggestions for a partial query through
// the site's GraphQL endpoint, degrading to a synthesized suggestion from
// the search page when the endpoint refuses.
func (s *Listings) Autocomplete(ctx context.Context, query string) ([]domain.Suggestion, error) {
	if strings.TrimSpace(query) == "" {
		return nil, scrapeerr.Validation("query is required")
	}

	body, err := json.Marshal(map[string]any{
		"query":     autocompleteQuery,
		"variables": map[string]string{"query": query},
	})
	if err != nil {
		return nil, fmt.Errorf("encode autocomplete request: %w", err)
	}

	resp, err := s.fetcher.Post(ctx, autocompleteEndpoint, body, true)
	if err != nil {
		s.log.Warn("autocomplete endpoint failed, using fallback", "error", err.Error())
		return s.autocompleteFallback(ctx, query)
	}

	suggestions := parseSuggestions(resp.Body)
	if len(suggestions) == 0 {
		return s.autocompleteFallback(ctx, query)
	}
	return suggestions, nil
}

func parseSuggestions(body []byte) []domain.Suggestion {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	results, ok := payload.DigList(parsed, "data", "zgsAutocompleteRequest", "results")
	if !ok {
		return nil
	}

	var suggestions []domain.Suggestion
	for _, raw := range results {
		result, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		meta, _ := result["metaData"].(map[string]any)

		suggestion := domain.Suggestion{
			Display: stringAt(result, "display"),
			Type:    stringAt(result, "resultType"),
		}
		if meta != nil {
			if id, ok := payload.Int(meta["regionId"]); ok {
				suggestion.ID = fmt.Sprintf("%d", id)
			} else {
				suggestion.ID = stringAt(meta, "regionId")
			}
			suggestion.City = stringAt(meta, "city")
			suggestion.State = stringAt(meta, "state")
		}
		if suggestion.Display != "" {
			suggestions = append(suggestions, suggestion)
		}
	}
	return suggestions
}

// autocompleteFallback verifies the query resolves as a search and
// synthesizes a single suggestion from it.
func (s *Listings) autocompleteFallback(ctx context.Context, query string) ([]domain.Suggestion, error) {
	slug := strings.ReplaceAll(query, " ", "-")
	target := baseURL + "/homes/" + slug + "_rb/"

	if _, err := s.fetcher.Get(ctx, target, nil, true); err != nil {
		return nil, err
	}

	title := titleize(query)
	return []domain.Suggestion{{
		Display: title,
		Type:    "search",
		City:    title,
	}}, nil
}

func titleize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + w[size:]
	}
	return strings.Join(words, " ")
}
