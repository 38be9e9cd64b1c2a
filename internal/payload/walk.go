package payload

import (
	"sort"
	"strconv"
)

// maxScanDepth bounds recursive traversal so adversarial or cyclic-looking
// payloads cannot blow the stack.
const maxScanDepth = 32

// totalCountThreshold rejects small values during the recursive count scan;
// values at or below it are usually per-page counts nested deeper in the
// structure, not the true result total.
const totalCountThreshold = 100

// totalCountKeys are the keys that typically carry a result total.
var totalCountKeys = []string{"totalResultCount", "resultCount", "totalCount"}

// Dig walks a parsed JSON value down a key path and returns the value at
// the end, or nil when any step is missing or not an object.
func Dig(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

// DigMap is Dig constrained to an object result.
func DigMap(v any, path ...string) (map[string]any, bool) {
	m, ok := Dig(v, path...).(map[string]any)
	return m, ok
}

// DigList is Dig constrained to a non-empty array result.
func DigList(v any, path ...string) ([]any, bool) {
	list, ok := Dig(v, path...).([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	return list, true
}

// String coerces a JSON value to a string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Float coerces a JSON value to a float64, accepting numbers and numeric
// strings.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int coerces a JSON value to an int64, accepting whole-number floats and
// numeric strings.
func Int(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// FindTotalCount scans a parsed JSON value for a plausible total-result
// count. At each object it checks the known count keys, accepting a value
// only above the sanity threshold so per-page counts deeper in the
// structure are skipped; an object that itself holds the result list is
// trusted without the threshold. Object keys are visited in sorted order
// so traversal is deterministic. Returns 0 when nothing plausible exists.
func FindTotalCount(v any) int {
	return findTotal(v, 0)
}

func findTotal(v any, depth int) int {
	if depth > maxScanDepth {
		return 0
	}

	switch t := v.(type) {
	case map[string]any:
		for _, key := range totalCountKeys {
			if n, ok := Int(t[key]); ok && n > totalCountThreshold {
				return int(n)
			}
		}

		// The results container reports its own total authoritatively.
		if _, hasList := t["listResults"]; hasList {
			for _, key := range totalCountKeys {
				if n, ok := Int(t[key]); ok && n > 0 {
					return int(n)
				}
			}
		}

		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if n := findTotal(t[key], depth+1); n > 0 {
				return n
			}
		}
	case []any:
		for _, item := range t {
			if n := findTotal(item, depth+1); n > 0 {
				return n
			}
		}
	}
	return 0
}
