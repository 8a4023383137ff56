package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/response"
	"github.com/gmprep/simulado-backend/internal/service"
	"github.com/gmprep/simulado-backend/internal/validator"
)

// SimulationHandler handles the timed mock exam endpoints.
type SimulationHandler struct {
	simulationService *service.SimulationService
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(simulationService *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: simulationService}
}

// Start godoc
// POST /api/v1/simulations
// Composes a 40-question paper and starts the countdown, or resumes the
// running one.
func (h *SimulationHandler) Start(c *gin.Context) {
	paper, err := h.simulationService.Start(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, paper)
}

// State godoc
// GET /api/v1/simulations/:id
func (h *SimulationHandler) State(c *gin.Context) {
	state, err := h.simulationService.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// SaveAnswer godoc
// PUT /api/v1/simulations/:id/answers
func (h *SimulationHandler) SaveAnswer(c *gin.Context) {
	var req model.SimulationAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.simulationService.SaveAnswer(c.Request.Context(), c.Param("id"), *req.Index, req.Answer); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"index": *req.Index, "answer": req.Answer})
}

// Submit godoc
// POST /api/v1/simulations/:id/submit
// Finishes the simulation and returns the graded outcome.
func (h *SimulationHandler) Submit(c *gin.Context) {
	out, err := h.simulationService.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
