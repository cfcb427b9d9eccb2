package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptbench/promptbench/internal/models"
)

// Model request/response structures
type RegisterModelRequest struct {
	Name     string `json:"name" binding:"required"`
	Provider string `json:"provider" binding:"required"`
	Model    string `json:"model" binding:"required"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

type ModelResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Provider         string     `json:"provider"`
	Model            string     `json:"model"`
	APIKey           string     `json:"api_key,omitempty"`
	BaseURL          string     `json:"base_url,omitempty"`
	MaxContextLength int        `json:"max_context_length"`
	CostPer1KTokens  float64    `json:"cost_per_1k_tokens"`
	Connected        bool       `json:"connected"`
	Modalities       []string   `json:"modalities,omitempty"`
	Enabled          bool       `json:"enabled"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// listModels handles GET /api/v1/models
func (s *Server) listModels(c *gin.Context) {
	descriptors := s.registry.List()

	responses := make([]ModelResponse, len(descriptors))
	for i, d := range descriptors {
		responses[i] = descriptorResponse(d)
		if spec, err := s.configStore.GetModel(c.Request.Context(), d.ID); err == nil {
			fillSpec(&responses[i], spec)
		}
	}

	s.successResponse(c, responses)
}

// getModel handles GET /api/v1/models/:id
func (s *Server) getModel(c *gin.Context) {
	id := c.Param("id")

	connector, ok := s.registry.Get(id)
	if !ok {
		s.errorResponse(c, http.StatusNotFound, "Model not found: "+id)
		return
	}

	d := connector.Describe()
	d.ID = id
	response := descriptorResponse(d)
	if spec, err := s.configStore.GetModel(c.Request.Context(), id); err == nil {
		fillSpec(&response, spec)
	}

	s.successResponse(c, response)
}

// registerModel handles POST /api/v1/models. The backend is usable by
// benchmarks as soon as this returns.
func (s *Server) registerModel(c *gin.Context) {
	var req RegisterModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	spec := &models.ModelSpec{
		Name:     req.Name,
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
		BaseURL:  req.BaseURL,
		Enabled:  true,
	}

	id, err := s.registry.Register(c.Request.Context(), spec)
	if err != nil {
		s.failRequest(c, err)
		return
	}

	now := time.Now().UTC()
	spec.ID = id
	spec.CreatedAt = now
	spec.UpdatedAt = now
	if err := s.configStore.CreateModel(c.Request.Context(), spec); err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to persist model: "+err.Error())
		return
	}

	connector, _ := s.registry.Get(id)
	d := connector.Describe()
	d.ID = id
	response := descriptorResponse(d)
	fillSpec(&response, spec)

	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    response,
		Message: "Model registered successfully",
	})
}

// refreshModel handles POST /api/v1/models/:id/refresh
func (s *Server) refreshModel(c *gin.Context) {
	id := c.Param("id")

	connected, err := s.registry.RefreshConnectivity(c.Request.Context(), id)
	if err != nil {
		s.failRequest(c, err)
		return
	}

	s.successResponse(c, gin.H{"id": id, "connected": connected})
}

// deleteModel handles DELETE /api/v1/models/:id. The connector stays in
// the registry until restart; the spec no longer loads.
func (s *Server) deleteModel(c *gin.Context) {
	id := c.Param("id")

	if err := s.configStore.DeleteModel(c.Request.Context(), id); err != nil {
		s.errorResponse(c, http.StatusNotFound, "Model not found: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: "Model deleted successfully",
	})
}

func descriptorResponse(d models.ModelDescriptor) ModelResponse {
	return ModelResponse{
		ID:               d.ID,
		Name:             d.Name,
		Provider:         d.Provider,
		MaxContextLength: d.MaxContextLength,
		CostPer1KTokens:  d.CostPer1KTokens,
		Connected:        d.Connected,
		Modalities:       d.Modalities,
	}
}

func fillSpec(r *ModelResponse, spec *models.ModelSpec) {
	r.Model = spec.Model
	r.APIKey = maskAPIKey(spec.APIKey)
	r.BaseURL = spec.BaseURL
	r.Enabled = spec.Enabled
	created := spec.CreatedAt
	updated := spec.UpdatedAt
	r.CreatedAt = &created
	r.UpdatedAt = &updated
}
