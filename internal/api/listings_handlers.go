package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/salimhm/zillow-scraper/internal/scrape"
	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// listTypeParam parses the listing type, defaulting to for-sale.
func listTypeParam(c *gin.Context) (string, bool) {
	listType := c.DefaultQuery("type", scrape.ListTypeForSale)
	switch listType {
	case scrape.ListTypeForSale, scrape.ListTypeForRent, scrape.ListTypeSold:
		return listType, true
	default:
		writeError(c, scrapeerr.Validationf("invalid listing type %q", listType))
		return "", false
	}
}

// filtersFromQuery builds search filters out of the query string. Absent
// parameters leave the zero value, which the filter state omits.
func filtersFromQuery(c *gin.Context) scrape.SearchFilters {
	intQ := func(name string) int {
		n, _ := strconv.Atoi(c.Query(name))
		return n
	}
	boolQ := func(name string) bool {
		on, _ := strconv.ParseBool(c.Query(name))
		return on
	}

	return scrape.SearchFilters{
		MinPrice: intQ("min_price"),
		MaxPrice: intQ("max_price"),
		Beds:     intQ("beds"),
		Baths:    intQ("baths"),
		MinSqft:  intQ("min_sqft"),
		MaxSqft:  intQ("max_sqft"),
		MinBuilt: intQ("min_built"),
		MaxBuilt: intQ("max_built"),
		MinLot:   intQ("min_lot"),
		MaxLot:   intQ("max_lot"),
		MaxHOA:   intQ("max_hoa"),

		SingleFamily: boolQ("single_family"),
		Condo:        boolQ("condo"),
		Townhouse:    boolQ("townhouse"),
		Apartment:    boolQ("apartment"),
		MultiFamily:  boolQ("multi_family"),
		LotLand:      boolQ("lot_land"),
		Manufactured: boolQ("manufactured"),

		HasPool:      boolQ("pool"),
		HasGarage:    boolQ("garage"),
		ParkingSpots: intQ("parking_spots"),
		SingleStory:  boolQ("single_story"),

		WaterView:    boolQ("water_view"),
		MountainView: boolQ("mountain_view"),
		ParkView:     boolQ("park_view"),
		CityView:     boolQ("city_view"),

		BasementFinished:   boolQ("basement_finished"),
		BasementUnfinished: boolQ("basement_unfinished"),

		ComingSoon:     boolQ("coming_soon"),
		Foreclosure:    boolQ("foreclosure"),
		Auction:        boolQ("auction"),
		OpenHousesOnly: boolQ("open_houses"),
		ThreeDHome:     boolQ("3d_home"),

		DaysOnMarket: intQ("days_on_market"),
	}
}

func (s *Server) handleSearchByLocation(c *gin.Context) {
	location, ok := requiredParam(c, "location")
	if !ok {
		return
	}
	listType, ok := listTypeParam(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := s.listings.SearchByLocation(c.Request.Context(), location, listType, page, filtersFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchByCoordinates(c *gin.Context) {
	lat, ok := floatParam(c, "lat")
	if !ok {
		return
	}
	lng, ok := floatParam(c, "lng")
	if !ok {
		return
	}
	listType, ok := listTypeParam(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := s.listings.SearchByCoordinates(c.Request.Context(), lat, lng, listType, page, filtersFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchByBounds(c *gin.Context) {
	north, ok := floatParam(c, "north")
	if !ok {
		return
	}
	south, ok := floatParam(c, "south")
	if !ok {
		return
	}
	east, ok := floatParam(c, "east")
	if !ok {
		return
	}
	west, ok := floatParam(c, "west")
	if !ok {
		return
	}
	listType, ok := listTypeParam(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := s.listings.SearchByMapBounds(c.Request.Context(), north, south, east, west, listType, page, filtersFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchByPolygon(c *gin.Context) {
	polygon, ok := requiredParam(c, "polygon")
	if !ok {
		return
	}
	listType, ok := listTypeParam(c)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := s.listings.SearchByPolygon(c.Request.Context(), polygon, listType, page, filtersFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchByMLSID(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := s.listings.SearchByMLSID(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchByURL(c *gin.Context) {
	target, ok := requiredParam(c, "url")
	if !ok {
		return
	}

	result, err := s.listings.SearchByURL(c.Request.Context(), target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleApartmentDetails(c *gin.Context) {
	target, ok := requiredParam(c, "url")
	if !ok {
		return
	}

	details, err := s.listings.ApartmentDetails(c.Request.Context(), target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (s *Server) handleAutocomplete(c *gin.Context) {
	query, ok := requiredParam(c, "q")
	if !ok {
		return
	}

	suggestions, err := s.listings.Autocomplete(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": suggestions})
}
