package exam

import (
	"fmt"

	"github.com/gmprep/simulado-backend/internal/model"
)

// makeQuestions builds n questions labelled materia, answer key "a".
func makeQuestions(city, materia string, n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Origin:  &model.QuestionOrigin{City: city},
			Subject: materia,
			Number:  i + 1,
			Prompt:  fmt.Sprintf("%s %d", materia, i+1),
			Options: map[string]string{"a": "certo", "b": "errado"},
			Correct: "a",
		}
	}
	return qs
}
