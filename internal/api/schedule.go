package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/promptbench/promptbench/internal/logger"
	"github.com/promptbench/promptbench/internal/models"
)

// Schedule request/response structures
type CreateScheduleRequest struct {
	Name     string   `json:"name" binding:"required"`
	Prompts  []string `json:"prompts" binding:"required"`
	ModelIDs []string `json:"model_ids" binding:"required"`
	Metrics  []string `json:"metrics,omitempty"`
	CronExpr string   `json:"cron_expr" binding:"required"`
	Enabled  bool     `json:"enabled"`
}

type UpdateScheduleRequest struct {
	Name     string   `json:"name,omitempty"`
	Prompts  []string `json:"prompts,omitempty"`
	ModelIDs []string `json:"model_ids,omitempty"`
	Metrics  []string `json:"metrics,omitempty"`
	CronExpr string   `json:"cron_expr,omitempty"`
	Enabled  *bool    `json:"enabled,omitempty"`
}

// listSchedules handles GET /api/v1/schedules
func (s *Server) listSchedules(c *gin.Context) {
	enabledStr := c.Query("enabled")
	var enabled *bool

	if enabledStr == "true" {
		enabled = boolPtr(true)
	} else if enabledStr == "false" {
		enabled = boolPtr(false)
	}

	schedules, err := s.configStore.ListSchedules(c.Request.Context(), enabled)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list schedules: "+err.Error())
		return
	}

	s.successResponse(c, schedules)
}

// getSchedule handles GET /api/v1/schedules/:id
func (s *Server) getSchedule(c *gin.Context) {
	id := c.Param("id")

	schedule, err := s.configStore.GetSchedule(c.Request.Context(), id)
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Schedule not found: "+err.Error())
		return
	}

	s.successResponse(c, schedule)
}

// createSchedule handles POST /api/v1/schedules
func (s *Server) createSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := validateCronExpr(req.CronExpr); err != nil {
		s.failRequest(c, err)
		return
	}

	now := time.Now().UTC()
	schedule := &models.Schedule{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Prompts:   req.Prompts,
		ModelIDs:  req.ModelIDs,
		Metrics:   req.Metrics,
		CronExpr:  req.CronExpr,
		Enabled:   req.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.configStore.CreateSchedule(c.Request.Context(), schedule); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to create schedule: "+err.Error())
		return
	}

	s.reloadScheduler(c)

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    schedule,
		Message: "Schedule created successfully",
	})
}

// updateSchedule handles PUT /api/v1/schedules/:id
func (s *Server) updateSchedule(c *gin.Context) {
	id := c.Param("id")

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	schedule, err := s.configStore.GetSchedule(c.Request.Context(), id)
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, "Schedule not found: "+err.Error())
		return
	}

	if req.Name != "" {
		schedule.Name = req.Name
	}
	if req.Prompts != nil {
		schedule.Prompts = req.Prompts
	}
	if req.ModelIDs != nil {
		schedule.ModelIDs = req.ModelIDs
	}
	if req.Metrics != nil {
		schedule.Metrics = req.Metrics
	}
	if req.CronExpr != "" {
		if err := validateCronExpr(req.CronExpr); err != nil {
			s.failRequest(c, err)
			return
		}
		schedule.CronExpr = req.CronExpr
	}
	if req.Enabled != nil {
		schedule.Enabled = *req.Enabled
	}
	schedule.UpdatedAt = time.Now().UTC()

	if err := s.configStore.UpdateSchedule(c.Request.Context(), schedule); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to update schedule: "+err.Error())
		return
	}

	s.reloadScheduler(c)
	s.successResponse(c, schedule)
}

// deleteSchedule handles DELETE /api/v1/schedules/:id
func (s *Server) deleteSchedule(c *gin.Context) {
	id := c.Param("id")

	if err := s.configStore.DeleteSchedule(c.Request.Context(), id); err != nil {
		s.errorResponse(c, http.StatusNotFound, "Schedule not found: "+err.Error())
		return
	}

	s.reloadScheduler(c)

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Schedule deleted successfully",
	})
}

// executeSchedule handles POST /api/v1/schedules/:id/execute
func (s *Server) executeSchedule(c *gin.Context) {
	if s.scheduler == nil {
		s.errorResponse(c, http.StatusServiceUnavailable, "Scheduler is not running")
		return
	}

	id := c.Param("id")
	if err := s.scheduler.ExecuteNow(c.Request.Context(), id); err != nil {
		s.failRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Schedule executed",
	})
}

func (s *Server) reloadScheduler(c *gin.Context) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.Reload(c.Request.Context()); err != nil {
		logger.Error("Failed to reload scheduler: %v", err)
	}
}

func validateCronExpr(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return models.NewValidationError("cron_expr", "invalid cron expression: %v", err)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
