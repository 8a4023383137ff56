package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/response"
	"github.com/gmprep/simulado-backend/internal/service"
	"github.com/gmprep/simulado-backend/internal/validator"
)

// QuestionHandler serves study mode.
type QuestionHandler struct {
	studyService *service.StudyService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(studyService *service.StudyService) *QuestionHandler {
	return &QuestionHandler{studyService: studyService}
}

type questionsQuery struct {
	Subject string `form:"subject" binding:"required,max=100"`
	Count   int    `form:"count" binding:"omitempty,min=1,max=50"`
}

// Subjects godoc
// GET /api/v1/subjects
func (h *QuestionHandler) Subjects(c *gin.Context) {
	subjects, err := h.studyService.Subjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Questions godoc
// GET /api/v1/questions?subject=&count=
// Returns a random study round without the answer key.
func (h *QuestionHandler) Questions(c *gin.Context) {
	var q questionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	questions, err := h.studyService.Questions(c.Request.Context(), q.Subject, q.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}

// Answer godoc
// POST /api/v1/questions/answer
// Grades one study answer and records it in the user's progress.
func (h *QuestionHandler) Answer(c *gin.Context) {
	var req model.StudyAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.studyService.Answer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
