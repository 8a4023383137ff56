package corpus

import (
	"math/rand/v2"
	"slices"

	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/subject"
)

// Rand is the source of randomness used for sampling. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// FilterBySubject keeps the questions whose normalized subject equals
// canonical, preserving order.
func FilterBySubject(questions []model.Question, canonical string) []model.Question {
	out := make([]model.Question, 0)
	for _, q := range questions {
		if subject.Normalize(q.Subject) == canonical {
			out = append(out, q)
		}
	}
	return out
}

// SampleRandom returns min(count, len(questions)) distinct questions in
// uniformly random order. The input is left untouched. A nil rng uses the
// package-level generator.
func SampleRandom(questions []model.Question, count int, rng Rand) []model.Question {
	n := min(count, len(questions))
	if n <= 0 {
		return []model.Question{}
	}
	if rng == nil {
		rng = globalRand{}
	}

	pool := slices.Clone(questions)
	for i := range n {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}

// CountBySubject maps each normalized subject to its number of questions.
func CountBySubject(questions []model.Question) map[string]int {
	counts := make(map[string]int)
	for _, q := range questions {
		counts[subject.Normalize(q.Subject)]++
	}
	return counts
}
