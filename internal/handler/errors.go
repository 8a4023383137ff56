package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/corpus"
	"github.com/gmprep/simulado-backend/internal/exam"
	"github.com/gmprep/simulado-backend/internal/progress"
	"github.com/gmprep/simulado-backend/internal/repository"
	"github.com/gmprep/simulado-backend/internal/response"
	"github.com/gmprep/simulado-backend/internal/service"
)

type errorMapping struct {
	target error
	status int
	code   response.ErrCode
}

var errorMappings = []errorMapping{
	{progress.ErrAuthenticationRequired, http.StatusUnauthorized, response.ErrAuthRequired},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrTokenRevoked, http.StatusUnauthorized, response.ErrTokenRevoked},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrFreeLimitReached, http.StatusPaymentRequired, response.ErrFreeLimitReached},
	{service.ErrFreeSimulationLimit, http.StatusPaymentRequired, response.ErrFreeSimulationLimit},
	{service.ErrPremiumOnly, http.StatusForbidden, response.ErrPremiumOnly},
	{service.ErrQuestionNotFound, http.StatusNotFound, response.ErrQuestionNotFound},
	{service.ErrSimulationNotFound, http.StatusNotFound, response.ErrSimulationNotFound},
	{repository.ErrUserNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrSimulationFinished, http.StatusConflict, response.ErrSimulationFinished},
	{service.ErrSimulationGrading, http.StatusConflict, response.ErrSimulationGrading},
	{service.ErrInvalidQuestionIndex, http.StatusBadRequest, response.ErrInvalidQuestionIndex},
	{service.ErrUnknownTheme, http.StatusBadRequest, response.ErrUnknownTheme},
	{service.ErrEssayTooShort, http.StatusBadRequest, response.ErrEssayTooShort},
	{corpus.ErrEmptyCorpus, http.StatusServiceUnavailable, response.ErrEmptyCorpus},
}

// respondError maps a service error onto the API envelope. Unknown errors
// are attached to the context for the request logger and reported as 500.
func respondError(c *gin.Context, err error) {
	var shortage *service.ShortageError
	if errors.As(err, &shortage) {
		response.FailMessage(c, http.StatusUnprocessableEntity, response.ErrInsufficientQuestions,
			fmt.Sprintf("Simulado montado com %d/%d questões; o mínimo é %d.",
				shortage.Composed, shortage.Target, exam.MinimumSimulationSize))
		return
	}

	if m, ok := lookupError(err); ok {
		response.Fail(c, m.status, m.code)
		return
	}

	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

func lookupError(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// errorCode returns the API code of err, ErrInternal when unmapped.
func errorCode(err error) response.ErrCode {
	if errors.Is(err, service.ErrInsufficientQuestions) {
		return response.ErrInsufficientQuestions
	}
	if m, ok := lookupError(err); ok {
		return m.code
	}
	return response.ErrInternal
}
