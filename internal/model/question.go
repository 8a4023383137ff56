package model

import (
	"fmt"
	"sort"
)

// UnknownCity stands in for the origin city when a question carries no origin.
const UnknownCity = "unknown"

// QuestionOrigin identifies the exam a question was taken from.
type QuestionOrigin struct {
	City  string `json:"cidade"`
	Year  int    `json:"ano"`
	Board string `json:"banca"`
}

// Question is a single multiple-choice item of the corpus. Field names follow
// the corpus file format. Questions are never mutated after loading.
type Question struct {
	Origin      *QuestionOrigin   `json:"origem,omitempty"`
	Subject     string            `json:"materia" binding:"required"`
	Number      int               `json:"numero" binding:"min=1"`
	Prompt      string            `json:"enunciado" binding:"required"`
	Options     map[string]string `json:"alternativas" binding:"required,min=2,max=5,dive,keys,option,endkeys,required"`
	Correct     string            `json:"correta" binding:"required,option"`
	Explanation string            `json:"explicacao"`
	// SupportText is an optional reading passage the question refers to.
	SupportText string `json:"texto_apoio,omitempty"`
}

// ID returns the question identity used to deduplicate answers: origin city
// (or "unknown") and the sequence number within its source exam.
func (q Question) ID() string {
	city := UnknownCity
	if q.Origin != nil && q.Origin.City != "" {
		city = q.Origin.City
	}
	return fmt.Sprintf("%s_%d", city, q.Number)
}

// HasOption reports whether key is one of the question's options.
func (q Question) HasOption(key string) bool {
	_, ok := q.Options[key]
	return ok
}

// OptionKeys returns the option keys in alphabetical order.
func (q Question) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// QuestionForStudent is a question without the correct answer or explanation.
type QuestionForStudent struct {
	ID          string            `json:"id"`
	Origin      *QuestionOrigin   `json:"origem,omitempty"`
	Subject     string            `json:"materia"`
	Number      int               `json:"numero"`
	Prompt      string            `json:"enunciado"`
	Options     map[string]string `json:"alternativas"`
	SupportText string            `json:"texto_apoio,omitempty"`
}

// ForStudent strips the answer key from q.
func (q Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:          q.ID(),
		Origin:      q.Origin,
		Subject:     q.Subject,
		Number:      q.Number,
		Prompt:      q.Prompt,
		Options:     q.Options,
		SupportText: q.SupportText,
	}
}

// StudyAnswerRequest is the payload for answering a single study question.
type StudyAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,max=200"`
	Answer     string `json:"answer" binding:"required,option"`
}

// StudyAnswerResult is returned after grading a study answer.
type StudyAnswerResult struct {
	QuestionID       string `json:"question_id"`
	Correct          bool   `json:"correct"`
	CorrectOption    string `json:"correct_option"`
	Explanation      string `json:"explanation"`
	Subject          string `json:"subject"`
	FreeLimitReached bool   `json:"free_limit_reached"`
	TotalAnswered    int    `json:"total_answered"`
}
