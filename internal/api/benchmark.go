package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/runner"
)

// Benchmark request/response structures
type RunBenchmarkRequest struct {
	Prompts  []string `json:"prompts" binding:"required"`
	ModelIDs []string `json:"model_ids" binding:"required"`
	Metrics  []string `json:"metrics,omitempty"`
}

type BenchmarkSummary struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Prompts   int       `json:"prompts"`
	Models    int       `json:"models"`
	Metrics   []string  `json:"metrics"`
}

// runBenchmark handles POST /api/v1/benchmarks. The call blocks until
// every prompt/model unit has settled, then records the run.
func (s *Server) runBenchmark(c *gin.Context) {
	var req RunBenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	run, err := s.runner.Run(c.Request.Context(), runner.Request{
		Prompts:  req.Prompts,
		ModelIDs: req.ModelIDs,
		Metrics:  req.Metrics,
	})
	if err != nil {
		s.failRequest(c, err)
		return
	}

	if err := s.leaderboard.Record(c.Request.Context(), run); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Benchmark completed but recording failed: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    run,
		Message: "Benchmark completed",
	})
}

// listBenchmarks handles GET /api/v1/benchmarks
func (s *Server) listBenchmarks(c *gin.Context) {
	page, limit := s.parsePagination(c)

	filter := db.RunFilter{ModelID: c.Query("model_id")}
	runs, err := s.runStore.ListRuns(c.Request.Context(), filter)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list benchmarks: "+err.Error())
		return
	}

	total := len(runs)
	start := (page - 1) * limit
	end := start + limit
	if start >= total {
		runs = runs[:0]
	} else {
		if end > total {
			end = total
		}
		runs = runs[start:end]
	}

	summaries := make([]BenchmarkSummary, len(runs))
	for i, run := range runs {
		summaries[i] = BenchmarkSummary{
			ID:        run.ID,
			Timestamp: run.Timestamp,
			Prompts:   len(run.Prompts),
			Models:    len(run.ModelIDs),
			Metrics:   run.Metrics,
		}
	}

	totalPages := (total + limit - 1) / limit
	c.JSON(http.StatusOK, PaginatedResponse{
		Data: summaries,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int64(total),
			TotalPages: totalPages,
		},
	})
}

// getBenchmark handles GET /api/v1/benchmarks/:id
func (s *Server) getBenchmark(c *gin.Context) {
	id := c.Param("id")

	run, err := s.runStore.GetRun(c.Request.Context(), id)
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Benchmark not found: "+err.Error())
		return
	}

	s.successResponse(c, run)
}
