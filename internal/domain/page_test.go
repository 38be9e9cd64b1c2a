package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salimhm/zillow-scraper/internal/domain"
)

func TestNewResultPagePagination(t *testing.T) {
	items := make([]domain.Listing, 40)

	page := domain.NewResultPage(items, 85, 1, 40)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)

	last := domain.NewResultPage(make([]domain.Listing, 5), 85, 3, 40)
	assert.Equal(t, 3, last.TotalPages)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrevious)
}

func TestNewResultPageBackfillsObservedCount(t *testing.T) {
	items := make([]domain.Agent, 12)

	page := domain.NewResultPage(items, 0, 1, 40)
	assert.Equal(t, 12, page.TotalResults)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
}

func TestNewResultPageEmpty(t *testing.T) {
	page := domain.NewResultPage[domain.Review](nil, 0, 0, 0)

	assert.NotNil(t, page.Results)
	assert.Zero(t, page.TotalResults)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, domain.DefaultPerPage, page.PerPage)
	assert.Equal(t, 1, page.TotalPages)
}
