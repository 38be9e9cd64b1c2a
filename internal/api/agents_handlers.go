package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleAgentsByLocation(c *gin.Context) {
	location, ok := requiredParam(c, "location")
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := s.agents.ByLocation(c.Request.Context(), location, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAgentProfile(c *gin.Context) {
	ref, ok := requiredParam(c, "ref")
	if !ok {
		return
	}

	profile, err := s.agents.Profile(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleAgentReviews(c *gin.Context) {
	ref, ok := requiredParam(c, "ref")
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}

	result, err := s.agents.Reviews(c.Request.Context(), ref, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAgentListings(c *gin.Context) {
	ref, ok := requiredParam(c, "ref")
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

	result, err := s.agents.Listings(c.Request.Context(), ref, listType, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
