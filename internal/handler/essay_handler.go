package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/response"
	"github.com/gmprep/simulado-backend/internal/service"
	"github.com/gmprep/simulado-backend/internal/validator"
)

// EssayHandler handles essay submission.
type EssayHandler struct {
	essayService *service.EssayService
}

// NewEssayHandler creates a new EssayHandler.
func NewEssayHandler(essayService *service.EssayService) *EssayHandler {
	return &EssayHandler{essayService: essayService}
}

// Themes godoc
// GET /api/v1/essays/themes
func (h *EssayHandler) Themes(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"themes":     h.essayService.Themes(),
		"min_length": service.MinEssayLength,
	})
}

// Submit godoc
// POST /api/v1/essays
// Accepts an essay for deferred review. Premium only.
func (h *EssayHandler) Submit(c *gin.Context) {
	var req model.SubmitEssayRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	essay, err := h.essayService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, essay)
}

// List godoc
// GET /api/v1/essays
func (h *EssayHandler) List(c *gin.Context) {
	essays, err := h.essayService.Essays(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"essays": essays, "count": len(essays)})
}
