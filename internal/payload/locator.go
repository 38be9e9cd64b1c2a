// Package payload locates structured JSON data embedded in fetched pages
// and provides the traversal helpers the extraction layer is built on.
// Rendering frameworks hide the interesting data in script elements; the
// locator tries a fixed sequence of extraction strategies and stops at the
// first that yields anything.
package payload

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// heuristicMinScriptLen is the minimum script body length considered by the
// large-script scan. Short scripts are never data payloads.
const heuristicMinScriptLen = 1000

// heuristicMarkers identify scripts likely to wrap search results.
var heuristicMarkers = []string{`"searchResults"`, `"listResults"`}

var apolloStateRe = regexp.MustCompile(`(?s)"apolloState"\s*:\s*(\{.+?\})\s*,\s*"[a-zA-Z]`)

// Locate searches doc for an embedded JSON payload, trying in order:
// the framework state element, declared-JSON scripts, a heuristic scan of
// large scripts, and finally the apollo state object. The first strategy
// that parses wins.
func Locate(doc *goquery.Document) (any, bool) {
	if v, ok := FromNextData(doc); ok {
		return v, true
	}
	if v, ok := FromJSONScripts(doc); ok {
		return v, true
	}
	if v, ok := FromLargeScripts(doc); ok {
		return v, true
	}
	if v, ok := ApolloState(doc); ok {
		return v, true
	}
	return nil, false
}

// FromNextData parses the __NEXT_DATA__ element and returns its
// props.pageProps subtree, the part that carries page data.
func FromNextData(doc *goquery.Document) (any, bool) {
	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, false
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, false
	}

	if props := Dig(parsed, "props", "pageProps"); props != nil {
		return props, true
	}
	return parsed, true
}

// FromJSONScripts tries every script declared as application/json and
// returns the first that parses.
func FromJSONScripts(doc *goquery.Document) (any, bool) {
	var found any
	doc.Find(`script[type="application/json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var parsed any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return true
		}
		found = parsed
		return false
	})
	return found, found != nil
}

// FromLargeScripts scans all scripts for large bodies that look like JSON
// payloads (leading brace or a known result marker) and parses the first
// candidate that succeeds.
func FromLargeScripts(doc *goquery.Document) (any, bool) {
	var found any
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		if len(raw) < heuristicMinScriptLen {
			return true
		}
		if !looksLikePayload(raw) {
			return true
		}
		var parsed any
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
			return true
		}
		found = parsed
		return false
	})
	return found, found != nil
}

func looksLikePayload(raw string) bool {
	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return true
	}
	for _, marker := range heuristicMarkers {
		if strings.Contains(raw, marker) {
			return true
		}
	}
	return false
}

// ApolloState extracts the embedded apollo client state object from script
// text. Last-resort strategy: the object is not standalone JSON, so it is
// cut out of the surrounding script with a regex.
func ApolloState(doc *goquery.Document) (any, bool) {
	var found any
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()
		if !strings.Contains(raw, "apolloState") {
			return true
		}
		match := apolloStateRe.FindStringSubmatch(raw)
		if match == nil {
			return true
		}
		var parsed any
		if err := json.Unmarshal([]byte(match[1]), &parsed); err != nil {
			return true
		}
		found = parsed
		return false
	})
	return found, found != nil
}
