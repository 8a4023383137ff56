package exam

import (
	"fmt"

	"github.com/gmprep/simulado-backend/internal/corpus"
	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/subject"
)

// TargetSize is the number of questions in a complete mock exam.
const TargetSize = 40

// MinimumSimulationSize is the smallest composition a mock exam may start with.
const MinimumSimulationSize = 30

// Quota is the number of questions drawn for one subject.
type Quota struct {
	Subject string
	Count   int
}

// Quotas lists the mock exam buckets in presentation order.
var Quotas = []Quota{
	{subject.Portuguese, 5},
	{subject.Logic, 5},
	{subject.Computing, 5},
	{subject.HistoryGeo, 5},
	{subject.LegalNotions, 10},
	{subject.Legislation, 10},
}

// QuotaFor returns the quota of a canonical subject, or 0.
func QuotaFor(name string) int {
	for _, q := range Quotas {
		if q.Subject == name {
			return q.Count
		}
	}
	return 0
}

// Composition is the outcome of composing a mock exam.
type Composition struct {
	Questions []model.Question
	Buckets   []model.BucketReport
	Target    int
	Shortfall int
}

// Summary renders the composed size against the target, e.g. "34/40".
func (c Composition) Summary() string {
	return fmt.Sprintf("%d/%d", len(c.Questions), c.Target)
}

// Complete reports whether every bucket met its quota.
func (c Composition) Complete() bool {
	return c.Shortfall == 0
}

// Compose draws a stratified random exam from questions. Buckets short of
// their quota contribute what they have; no bucket borrows from another.
// Returned questions are copies carrying the canonical subject name.
func Compose(questions []model.Question, rng corpus.Rand) Composition {
	grouped := make(map[string][]model.Question, len(Quotas))
	for _, q := range questions {
		canonical := subject.Normalize(q.Subject)
		q.Subject = canonical
		grouped[canonical] = append(grouped[canonical], q)
	}

	comp := Composition{
		Questions: make([]model.Question, 0, TargetSize),
		Buckets:   make([]model.BucketReport, 0, len(Quotas)),
		Target:    TargetSize,
	}
	for _, quota := range Quotas {
		pool := grouped[quota.Subject]
		picked := corpus.SampleRandom(pool, quota.Count, rng)
		shortfall := quota.Count - len(picked)

		comp.Questions = append(comp.Questions, picked...)
		comp.Buckets = append(comp.Buckets, model.BucketReport{
			Subject:   quota.Subject,
			Quota:     quota.Count,
			Available: len(pool),
			Selected:  len(picked),
			Shortfall: shortfall,
		})
		comp.Shortfall += shortfall
	}
	return comp
}
