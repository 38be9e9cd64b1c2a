package normalize

import (
	"strings"

	"github.com/salimhm/zillow-scraper/internal/payload"
)

const siteBaseURL = "https://www.zillow.com"

// firstString returns the first non-empty string among keys, in order.
func firstString(card map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := payload.String(card[key]); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstFloat returns the first numeric value among keys, in order.
func firstFloat(card map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if f, ok := payload.Float(card[key]); ok {
			return &f
		}
	}
	return nil
}

// firstInt returns the first whole-number value among keys, in order.
func firstInt(card map[string]any, keys ...string) *int {
	for _, key := range keys {
		if n, ok := payload.Int(card[key]); ok {
			v := int(n)
			return &v
		}
	}
	return nil
}

// absoluteURL prefixes a site-relative path with the site origin.
func absoluteURL(raw string) string {
	if raw == "" || strings.HasPrefix(raw, "http") {
		return raw
	}
	return siteBaseURL + raw
}
