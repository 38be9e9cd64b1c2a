// Package api implements the HTTP API for the scraper service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salimhm/zillow-scraper/internal/config"
	"github.com/salimhm/zillow-scraper/internal/domain"
	"github.com/salimhm/zillow-scraper/internal/logger"
	"github.com/salimhm/zillow-scraper/internal/ratelimit"
	"github.com/salimhm/zillow-scraper/internal/scrape"
)

// ListingsService is the property-search surface the API exposes.
type ListingsService interface {
	SearchByLocation(ctx context.Context, location, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error)
	SearchByCoordinates(ctx context.Context, lat, lng float64, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error)
	SearchByMapBounds(ctx context.Context, north, south, east, west float64, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error)
	SearchByPolygon(ctx context.Context, polygon, listType string, page int, filters scrape.SearchFilters) (domain.ResultPage[domain.Listing], error)
	SearchByMLSID(ctx context.Context, mlsID string, page int) (domain.ResultPage[domain.Listing], error)
	SearchByURL(ctx context.Context, target string) (domain.ResultPage[domain.Listing], error)
	ApartmentDetails(ctx context.Context, target string) (domain.ApartmentDetails, error)
	Autocomplete(ctx context.Context, query string) ([]domain.Suggestion, error)
}

// AgentsService is the agent-directory surface the API exposes.
type AgentsService interface {
	ByLocation(ctx context.Context, location string, page int) (domain.ResultPage[domain.Agent], error)
	Profile(ctx context.Context, ref string) (domain.AgentProfile, error)
	Reviews(ctx context.Context, ref string, page int) (domain.ResultPage[domain.Review], error)
	Listings(ctx context.Context, ref, listType string, page int) (domain.ResultPage[domain.Listing], error)
}

var (
	_ ListingsService = (*scrape.Listings)(nil)
	_ AgentsService   = (*scrape.Agents)(nil)
)

// Server is the HTTP API server.
type Server struct {
	listings ListingsService
	agents   AgentsService
	limiter  *ratelimit.Limiter
	log      logger.Interface
	httpSrv  *http.Server
}

// NewServer wires the API around the given services. The limiter may be
// nil, in which case no rate limiting is applied.
func NewServer(cfg config.ServerConfig, log logger.Interface, listings ListingsService, agents AgentsService, limiter *ratelimit.Limiter) *Server {
	s := &Server{
		listings: listings,
		agents:   agents,
		limiter:  limiter,
		log:      log.WithComponent("api"),
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(s.log))

	engine.GET("/healthz", s.handleHealth)

	v1 := engine.Group("/api/v1")
	if s.limiter != nil {
		v1.Use(RateLimit(s.limiter, s.log))
	}

	v1.GET("/listings/search", s.handleSearchByLocation)
	v1.GET("/listings/coordinates", s.handleSearchByCoordinates)
	v1.GET("/listings/bounds", s.handleSearchByBounds)
	v1.GET("/listings/polygon", s.handleSearchByPolygon)
	v1.GET("/listings/mls/:id", s.handleSearchByMLSID)
	v1.GET("/listings/url", s.handleSearchByURL)
	v1.GET("/apartments", s.handleApartmentDetails)
	v1.GET("/autocomplete", s.handleAutocomplete)

	v1.GET("/agents", s.handleAgentsByLocation)
	v1.GET("/agents/profile", s.handleAgentProfile)
	v1.GET("/agents/reviews", s.handleAgentReviews)
	v1.GET("/agents/listings", s.handleAgentListings)

	return engine
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting API server", "address", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("stopping API server")
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
