package domain

// DefaultPerPage matches the source site's fixed results-per-page.
const DefaultPerPage = 40

// ResultPage is one page of extracted records plus pagination metadata.
type ResultPage[T any] struct {
	Results      []T    `json:"results"`
	TotalResults int    `json:"total_results"`
	CurrentPage  int    `json:"current_page"`
	PerPage      int    `json:"per_page"`
	TotalPages   int    `json:"total_pages"`
	HasNext      bool   `json:"has_next"`
	HasPrevious  bool   `json:"has_previous"`
	SourceURL    string `json:"source_url,omitempty"`
}

// NewResultPage builds a ResultPage from raw extraction output.
//
// When the source page exposed no total, totalResults is backfilled with the
// observed item count. That undercounts whenever more pages exist; it is
// inherent to single-page scraping, not corrected here.
func NewResultPage[T any](results []T, totalResults, currentPage, perPage int) ResultPage[T] {
	if results == nil {
		results = []T{}
	}
	if totalResults < len(results) {
		totalResults = len(results)
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	totalPages := (totalResults + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	return ResultPage[T]{
		Results:      results,
		TotalResults: totalResults,
		CurrentPage:  currentPage,
		PerPage:      perPage,
		TotalPages:   totalPages,
		HasNext:      currentPage < totalPages,
		HasPrevious:  currentPage > 1,
	}
}
