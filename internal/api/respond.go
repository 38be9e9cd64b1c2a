package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/salimhm/zillow-scraper/internal/scrapeerr"
)

// writeError maps the extraction error taxonomy onto HTTP statuses.
// Blocked maps to 503 because the upstream site, not this service, is
// refusing to answer.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, scrapeerr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, scrapeerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, scrapeerr.ErrBlocked):
		status = http.StatusServiceUnavailable
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString(requestIDKey),
	})
}

// pageParam parses the page query parameter, defaulting to 1.
func pageParam(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		writeError(c, scrapeerr.Validationf("invalid page %q", raw))
		return 0, false
	}
	return page, true
}

// floatParam parses a required float query parameter.
func floatParam(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		writeError(c, scrapeerr.Validationf("missing required parameter %q", name))
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(c, scrapeerr.Validationf("invalid %s %q", name, raw))
		return 0, false
	}
	return value, true
}

// requiredParam returns a non-empty query parameter or fails the request.
func requiredParam(c *gin.Context, name string) (string, bool) {
	value := c.Query(name)
	if value == "" {
		writeError(c, scrapeerr.Validationf("missing required parameter %q", name))
		return "", false
	}
	return value, true
}
