package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getLeaderboard handles GET /api/v1/leaderboard?metric=
func (s *Server) getLeaderboard(c *gin.Context) {
	metric := c.Query("metric")

	entries, err := s.leaderboard.Rank(c.Request.Context(), metric)
	if err != nil {
		s.failRequest(c, err)
		return
	}

	s.successResponse(c, entries)
}

// getLeaderboardStats handles GET /api/v1/leaderboard/stats
func (s *Server) getLeaderboardStats(c *gin.Context) {
	stats, err := s.leaderboard.Stats(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to compute stats: "+err.Error())
		return
	}

	s.successResponse(c, stats)
}

// getModelHistory handles GET /api/v1/leaderboard/models/:id/history
func (s *Server) getModelHistory(c *gin.Context) {
	id := c.Param("id")

	history, err := s.leaderboard.ModelHistory(c.Request.Context(), id)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to load model history: "+err.Error())
		return
	}
	if len(history) == 0 {
		s.errorResponse(c, http.StatusNotFound, "No benchmark history for model: "+id)
		return
	}

	s.successResponse(c, history)
}
