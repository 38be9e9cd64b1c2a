package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salimhm/zillow-scraper/internal/api"
	"github.com/salimhm/zillow-scraper/internal/config"
	"github.com/salimhm/zillow-scraper/internal/coordination"
	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/logger"
	"github.com/salimhm/zillow-scraper/internal/ratelimit"
	"github.com/salimhm/zillow-scraper/internal/scrape"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubListings struct {
	page        domain.ResultPage[domain.Listing]
	details     domain.ApartmentDetails
	suggestions []domain.Suggestion
	err         error

	gotLocation string
	gotType     string
	gotPage     int
	gotFilters  scrape.SearchFilters
	gotLat      float64
	gotLng      float64
	gotBounds   [4]float64
	gotPolygon  string
	gotMLSID    string
	gotURL      string
	gotQuery    string
}

func (s *stubListings) SearchByLocation(_ context.Context, location, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error) {
	s.gotLocation, s.gotType, s.gotPage, s.gotFilters = location, listType, page, filters
	return s.page, s.err
}

func (s *stubListings) SearchByCoordinates(_ context.Context, lat, lng float64, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error) {
	s.gotLat, s.gotLng, s.gotType, s.gotPage, s.gotFilters = lat, lng, listType, page, filters
	return s.page, s.err
}

func (s *stubListings) SearchByMapBounds(_ context.Context, north, south, east, west float64, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error) {
	s.gotBounds = [4]float64{north, south, east, west}
	s.gotType, s.gotPage, s.gotFilters = listType, page, filters
	return s.page, s.err
}

func (s *stubListings) SearchByPolygon(_ context.Context, polygon, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error) {
	s.gotPolygon, s.gotType, s.gotPage, s.gotFilters = polygon, listType, page, filters
	return s.page, s.err
}

func (s *stubListings) SearchByMLSID(_ context.Context, mlsID string, page int) (domain.ResultPage[domain.Listing], error) {
	s.gotMLSID, s.gotPage = mlsID, page
	return s.page, s.err
}

func (s *stubListings) SearchByURL(_ context.Context, target string) (domain.ResultPage[domain.Listing], error) {
	s.gotURL = target
	return s.page, s.err
}

func (s *stubListings) ApartmentDetails(_ context.Context, target string) (domain.ApartmentDetails, error) {
	s.gotURL = target
	return s.details, s.err
}

func (s *stubListings) Autocomplete(_ context.Context, query string) ([]domain.Suggestion, error) {
	s.gotQuery = query
	return s.suggestions, s.err
}

type stubAgents struct {
	agents  domain.ResultPage[domain.Agent]
	profile domain.AgentProfile
	reviews domain.ResultPage[domain.Review]
	page    domain.ResultPage[domain.Listing]
	err     error

	gotRef  string
	gotType string
	gotPage int
}

func (s *stubAgents) ByLocation(_ context.Context, location string, page int) (domain.ResultPage[domain.Agent], error) {
	s.gotRef, s.gotPage = location, page
	return s.agents, s.err
}

func (s *stubAgents) Profile(_ context.Context, ref string) (domain.AgentProfile, error) {
	s.gotRef = ref
	return s.profile, s.err
}

func (s *stubAgents) Reviews(_ context.Context, ref string, page int) (domain.ResultPage[domain.Review], error) {
	s.gotRef, s.gotPage = ref, page
	return s.reviews, s.err
}

func (s *stubAgents) Listings(_ context.Context, ref, listType string, page int) (domain.ResultPage[domain.Listing], error) {
	s.gotRef, s.gotType, s.gotPage = ref, listType, page
	return s.page, s.err
}

func newTestServer(listings *stubListings, agents *stubAgents, limiter *ratelimit.Limiter) *api.Server {
	return api.NewServer(config.ServerConfig{Address: ":0"}, logger.NewNoOp(), listings, agents, limiter)
}

func doRequest(t *testing.T, srv *api.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func samplePage(count, total int) domain.ResultPage[domain.Listing] {
	listings := make([]domain.Listing, count)
	for i := range listings {
		listings[i] = domain.Listing{Address: "123 Main St", URL: "https://www.zillow.com/homedetails/1_zpid/"}
	}
	return domain.NewResultPage(listings, total, 1, domain.DefaultPerPage)
}

func TestSearchByLocation(t *testing.T) {
	listings := &stubListings{page: samplePage(2, 90)}
	srv := newTestServer(listings, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/search?location=phoenix-az&type=for-rent&page=2&min_price=1000&max_price=2500&beds=2&pool=true")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "phoenix-az", listings.gotLocation)
	assert.Equal(t, scrape.ListTypeForRent, listings.gotType)
	assert.Equal(t, 2, listings.gotPage)
	assert.Equal(t, 1000, listings.gotFilters.MinPrice)
	assert.Equal(t, 2500, listings.gotFilters.MaxPrice)
	assert.Equal(t, 2, listings.gotFilters.Beds)
	assert.True(t, listings.gotFilters.HasPool)

	var page domain.ResultPage[domain.Listing]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 90, page.TotalResults)
	assert.Len(t, page.Results, 2)
}

func TestSearchByLocationMissingLocation(t *testing.T) {
	srv := newTestServer(&stubListings{}, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "location")
}

func TestSearchByLocationInvalidType(t *testing.T) {
	srv := newTestServer(&stubListings{}, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/search?location=phoenix-az&type=for-lease")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchByLocationInvalidPage(t *testing.T) {
	srv := newTestServer(&stubListings{}, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/search?location=phoenix-az&page=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", scrapeerr.Validation("bad input"), http.StatusBadRequest},
		{"not found", scrapeerr.NotFound("no results"), http.StatusNotFound},
		{"blocked", scrapeerr.Blocked("request denied with status 403"), http.StatusServiceUnavailable},
		{"wrapped blocked", &scrapeerr.ScrapeFailed{URL: "https://www.zillow.com/x", Attempts: 3, Cause: scrapeerr.Blocked("denied")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubListings{err: tt.err}, &stubAgents{}, nil)
			rec := doRequest(t, srv, "/api/v1/listings/search?location=phoenix-az")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSearchByCoordinates(t *testing.T) {
	listings := &stubListings{page: samplePage(1, 1)}
	srv := newTestServer(listings, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/coordinates?lat=33.44&lng=-112.07")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 33.44, listings.gotLat, 1e-9)
	assert.InDelta(t, -112.07, listings.gotLng, 1e-9)
	assert.Equal(t, scrape.ListTypeForSale, listings.gotType)
}

func TestSearchByCoordinatesMissingLat(t *testing.T) {
	srv := newTestServer(&stubListings{}, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/coordinates?lng=-112.07")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "lat")
}

func TestSearchByBounds(t *testing.T) {
	listings := &stubListings{page: samplePage(1, 1)}
	srv := newTestServer(listings, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/bounds?north=34&south=33&east=-111&west=-112")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [4]float64{34, 33, -111, -112}, listings.gotBounds)
}

func TestSearchByMLSID(t *testing.T) {
	listings := &stubListings{page: samplePage(1, 1)}
	srv := newTestServer(listings, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/mls/AB1234567?page=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AB1234567", listings.gotMLSID)
	assert.Equal(t, 3, listings.gotPage)
}

func TestSearchByURL(t *testing.T) {
	listings := &stubListings{page: samplePage(1, 1)}
	srv := newTestServer(listings, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/listings/url?url=https%3A%2F%2Fwww.zillow.com%2Fphoenix-az%2F")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://www.zillow.com/phoenix-az/", listings.gotURL)
}

func TestApartmentDetails(t *testing.T) {
	listings := &stubListings{details: domain.ApartmentDetails{Name: "The Standard", Address: "1 Center Ave"}}
	srv := newTestServer(listings, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/apartments?url=https%3A%2F%2Fwww.zillow.com%2Fb%2Fthe-standard%2F")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Standard")
}

func TestAutocomplete(t *testing.T) {
	listings := &stubListings{suggestions: []domain.Suggestion{{Display: "Phoenix, AZ", Type: "Region"}}}
	srv := newTestServer(listings, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/api/v1/autocomplete?q=phoe")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "phoe", listings.gotQuery)
	assert.Contains(t, rec.Body.String(), "Phoenix, AZ")
}

func TestAgentsByLocation(t *testing.T) {
	agents := &stubAgents{agents: domain.NewResultPage([]domain.Agent{{Name: "Pat Doe"}}, 12, 1, domain.DefaultPerPage)}
	srv := newTestServer(&stubListings{}, agents, nil)

	rec := doRequest(t, srv, "/api/v1/agents?location=phoenix-az&page=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "phoenix-az", agents.gotRef)
	assert.Contains(t, rec.Body.String(), "Pat Doe")
}

func TestAgentProfile(t *testing.T) {
	agents := &stubAgents{profile: domain.AgentProfile{Agent: domain.Agent{Name: "Pat Doe"}}}
	srv := newTestServer(&stubListings{}, agents, nil)

	rec := doRequest(t, srv, "/api/v1/agents/profile?ref=pat-doe")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pat-doe", agents.gotRef)
}

func TestAgentProfileNotFound(t *testing.T) {
	agents := &stubAgents{err: scrapeerr.NotFound("agent profile yielded no name")}
	srv := newTestServer(&stubListings{}, agents, nil)

	rec := doRequest(t, srv, "/api/v1/agents/profile?ref=nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAgentReviewsAndListings(t *testing.T) {
	agents := &stubAgents{
		reviews: domain.NewResultPage([]domain.Review{{Rating: 5, Text: "great"}}, 1, 1, domain.DefaultPerPage),
		page:    samplePage(1, 1),
	}
	srv := newTestServer(&stubListings{}, agents, nil)

	rec := doRequest(t, srv, "/api/v1/agents/reviews?ref=pat-doe&page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, agents.gotPage)

	rec = doRequest(t, srv, "/api/v1/agents/listings?ref=pat-doe&type=sold")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scrape.ListTypeSold, agents.gotType)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(&stubListings{}, &stubAgents{}, nil)

	rec := doRequest(t, srv, "/healthz")
	assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))

	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(api.RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(api.RequestIDHeader))
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(coordination.NewMemoryStore(), logger.NewNoOp(), 2, 100)
	limiter.SetClock(fixedClock{now: time.Unix(1_700_000_000, 0)})

	listings := &stubListings{page: samplePage(1, 1)}
	srv := newTestServer(listings, &stubAgents{}, limiter)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, srv, "/api/v1/listings/search?location=phoenix-az")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, srv, "/api/v1/listings/search?location=phoenix-az")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitSkipsHealth(t *testing.T) {
	limiter := ratelimit.NewLimiter(coordination.NewMemoryStore(), logger.NewNoOp(), 1, 1)
	limiter.SetClock(fixedClock{now: time.Unix(1_700_000_000, 0)})
	srv := newTestServer(&stubListings{}, &stubAgents{}, limiter)

	for i := 0; i < 3; i++ {
		rec := doRequest(t, srv, "/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
