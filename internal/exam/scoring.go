package exam

import (
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/subject"
)

const (
	// BasicWeight applies to the general knowledge subjects.
	BasicWeight = 1.5
	// LegalWeight applies to the legal subjects.
	LegalWeight = 3.5
	// DefaultWeight applies to any subject outside the rubric.
	DefaultWeight = 1.0
	// PassingScore is the minimum weighted total to pass.
	PassingScore = 50.0
)

var weights = map[string]float64{
	subject.Portuguese:   BasicWeight,
	subject.Logic:        BasicWeight,
	subject.Computing:    BasicWeight,
	subject.HistoryGeo:   BasicWeight,
	subject.LegalNotions: LegalWeight,
	subject.Legislation:  LegalWeight,
}

// Weight returns the points a correct answer in name is worth.
func Weight(name string) float64 {
	if w, ok := weights[name]; ok {
		return w
	}
	return DefaultWeight
}

// ScoreResult is the graded outcome of a mock exam.
type ScoreResult struct {
	Total      float64                       `json:"total"`
	PerSubject map[string]model.SubjectScore `json:"per_subject"`
	Passed     bool                          `json:"passed"`
	Answered   int                           `json:"answered"`
}

// Score grades answers, keyed by question index, against questions. Each
// question is weighted and reported under its canonical subject.
// Unanswered and out-of-range indices are ignored.
func Score(questions []model.Question, answers map[int]string) ScoreResult {
	res := ScoreResult{PerSubject: make(map[string]model.SubjectScore)}

	for i, q := range questions {
		name := subject.Normalize(q.Subject)
		s := res.PerSubject[name]
		s.Total++

		if chosen, ok := answers[i]; ok && chosen != "" {
			res.Answered++
			if chosen == q.Correct {
				w := Weight(name)
				s.Correct++
				s.Score += w
				res.Total += w
			}
		}
		res.PerSubject[name] = s
	}

	res.Passed = res.Total >= PassingScore
	return res
}
