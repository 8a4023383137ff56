package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/response"
	"github.com/gmprep/simulado-backend/internal/service"
)

// ProgressHandler serves the signed-in user's statistics.
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// Dashboard godoc
// GET /api/v1/progress
func (h *ProgressHandler) Dashboard(c *gin.Context) {
	dash, err := h.progressService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dash)
}

// Incorrect godoc
// GET /api/v1/progress/incorrect
// Lists questions whose latest answer was wrong.
func (h *ProgressHandler) Incorrect(c *gin.Context) {
	records, err := h.progressService.Incorrect(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": records, "count": len(records)})
}

// Subjects godoc
// GET /api/v1/progress/subjects
func (h *ProgressHandler) Subjects(c *gin.Context) {
	stats, err := h.progressService.Subjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": stats})
}

// Simulations godoc
// GET /api/v1/progress/simulations
func (h *ProgressHandler) Simulations(c *gin.Context) {
	sims, err := h.progressService.Simulations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"simulations": sims})
}

// LatestSimulation godoc
// GET /api/v1/progress/simulations/latest
func (h *ProgressHandler) LatestSimulation(c *gin.Context) {
	latest, err := h.progressService.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"simulation": latest})
}

// Clear godoc
// DELETE /api/v1/progress
func (h *ProgressHandler) Clear(c *gin.Context) {
	if err := h.progressService.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
