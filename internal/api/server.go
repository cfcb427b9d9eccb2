// Package api exposes the benchmark engine over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/leaderboard"
	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/models"
	"github.com/promptbench/promptbench/internal/runner"
	"github.com/promptbench/promptbench/internal/scheduler"
)

// APIResponse is the standard response envelope
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Pagination carries paging metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PaginatedResponse wraps list responses with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Server is the REST API server
type Server struct {
	registry    *llm.Registry
	runner      *runner.Runner
	leaderboard *leaderboard.Service
	configStore db.ConfigStore
	runStore    db.RunStore
	scheduler   *scheduler.Scheduler
	corsOrigin  string
	engine      *gin.Engine
}

// NewServer creates a new API server
func NewServer(registry *llm.Registry, bench *runner.Runner, board *leaderboard.Service, configStore db.ConfigStore, runStore db.RunStore, sched *scheduler.Scheduler, corsOrigin string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		registry:    registry,
		runner:      bench,
		leaderboard: board,
		configStore: configStore,
		runStore:    runStore,
		scheduler:   sched,
		corsOrigin:  corsOrigin,
		engine:      gin.New(),
	}

	s.engine.Use(gin.Logger(), gin.Recovery())
	s.engine.Use(s.corsMiddleware())
	s.setupRoutes()

	return s
}

// Run starts the HTTP server on the given address
func (s *Server) Run(address string) error {
	return s.engine.Run(address)
}

// Handler exposes the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/health", s.health)

		v1.GET("/models", s.listModels)
		v1.POST("/models", s.registerModel)
		v1.GET("/models/:id", s.getModel)
		v1.POST("/models/:id/refresh", s.refreshModel)
		v1.DELETE("/models/:id", s.deleteModel)

		v1.POST("/benchmarks", s.runBenchmark)
		v1.GET("/benchmarks", s.listBenchmarks)
		v1.GET("/benchmarks/:id", s.getBenchmark)

		v1.GET("/leaderboard", s.getLeaderboard)
		v1.GET("/leaderboard/stats", s.getLeaderboardStats)
		v1.GET("/leaderboard/models/:id/history", s.getModelHistory)

		v1.GET("/schedules", s.listSchedules)
		v1.POST("/schedules", s.createSchedule)
		v1.GET("/schedules/:id", s.getSchedule)
		v1.PUT("/schedules/:id", s.updateSchedule)
		v1.DELETE("/schedules/:id", s.deleteSchedule)
		v1.POST("/schedules/:id/execute", s.executeSchedule)
	}
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := s.corsOrigin
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// health handles GET /api/v1/health
func (s *Server) health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if err := s.configStore.Ping(c.Request.Context()); err != nil {
		status["status"] = "degraded"
		status["config_store"] = err.Error()
	}
	if err := s.runStore.Ping(c.Request.Context()); err != nil {
		status["status"] = "degraded"
		status["run_store"] = err.Error()
	}
	s.successResponse(c, status)
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   message,
	})
}

// failRequest maps an error to a response, surfacing validation errors
// as 400s with their field name
func (s *Server) failRequest(c *gin.Context, err error) {
	if verr, ok := models.IsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   verr.Message,
			Message: "invalid field: " + verr.Field,
		})
		return
	}
	s.errorResponse(c, http.StatusInternalServerError, err.Error())
}

func (s *Server) parsePagination(c *gin.Context) (int, int) {
	page := 1
	limit := 20

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	return page, limit
}

func maskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}
