// Package normalize maps the many source field shapes onto the canonical
// record types. Each entity has a fixed priority order per field; numeric
// and text cleaning is shared.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	nonPriceChars = regexp.MustCompile(`[^\d.]`)
	firstNumber   = regexp.MustCompile(`[\d,]+`)
	zpidInPath    = regexp.MustCompile(`/(\d+)_zpid`)
	zpidInQuery   = regexp.MustCompile(`zpid=(\d+)`)
)

// CleanPrice parses a price string like "$1,234,567" into its numeric
// value. Returns nil when nothing parseable remains.
func CleanPrice(raw string) *float64 {
	cleaned := nonPriceChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// CleanNumber extracts the first integer from a string like "3 beds" or
// "2,500 sqft". Returns nil when no number is present.
func CleanNumber(raw string) *int {
	match := firstNumber.FindString(raw)
	if match == "" {
		return nil
	}
	value, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return nil
	}
	return &value
}

// CleanText strips markup tags and collapses internal whitespace.
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			raw = doc.Text()
		}
	}
	return strings.Join(strings.Fields(raw), " ")
}

// ZPIDFromURL derives the numeric property id from a listing URL, which
// carries it either in the path ("/12345_zpid/") or the query ("zpid=12345").
func ZPIDFromURL(url string) *int64 {
	for _, re := range []*regexp.Regexp{zpidInPath, zpidInQuery} {
		if match := re.FindStringSubmatch(url); match != nil {
			if id, err := strconv.ParseInt(match[1], 10, 64); err == nil {
				return &id
			}
		}
	}
	return nil
}
