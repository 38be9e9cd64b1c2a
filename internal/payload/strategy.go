package payload

// PathStrategy names one candidate location for entity data inside a
// payload. Strategies for an entity are tried in declaration order; the
// first that yields data wins and later entries are never attempted.
type PathStrategy struct {
	Name string
	Path []string
}

// FirstMap applies strategies in order and returns the first non-empty
// object found, with the name of the winning strategy.
func FirstMap(root any, strategies []PathStrategy) (map[string]any, string) {
	for _, s := range strategies {
		if m, ok := DigMap(root, s.Path...); ok && len(m) > 0 {
			return m, s.Name
		}
	}
	return nil, ""
}

// FirstList applies strategies in order and returns the first non-empty
// array found, with the name of the winning strategy.
func FirstList(root any, strategies []PathStrategy) ([]any, string) {
	for _, s := range strategies {
		if list, ok := DigList(root, s.Path...); ok {
			return list, s.Name
		}
	}
	return nil, ""
}
