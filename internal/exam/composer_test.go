package exam

import (
	"math/rand/v2"
	"testing"

	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/subject"
)

func fullCorpus() []model.Question {
	var qs []model.Question
	qs = append(qs, makeQuestions("Curitiba", "Língua Portuguesa", 12)...)
	qs = append(qs, makeQuestions("Londrina", "Raciocínio Lógico", 12)...)
	qs = append(qs, makeQuestions("Maringa", "Noções de Informática", 12)...)
	qs = append(qs, makeQuestions("Cascavel", "História do Paraná", 12)...)
	qs = append(qs, makeQuestions("Colombo", "Direito Constitucional", 20)...)
	qs = append(qs, makeQuestions("Pinhais", "Legislação Municipal", 20)...)
	qs = append(qs, makeQuestions("Toledo", "Atualidades", 20)...)
	return qs
}

// TestComposeHonoursQuotas verifies bucket sizes with ample supply.
func TestComposeHonoursQuotas(t *testing.T) {
	comp := Compose(fullCorpus(), rand.New(rand.NewPCG(3, 4)))

	if len(comp.Questions) != TargetSize {
		t.Fatalf("expected %d questions, got %d", TargetSize, len(comp.Questions))
	}
	if comp.Shortfall != 0 || !comp.Complete() {
		t.Fatalf("expected no shortfall, got %d", comp.Shortfall)
	}
	if comp.Summary() != "40/40" {
		t.Fatalf("unexpected summary %q", comp.Summary())
	}

	counts := make(map[string]int)
	for _, q := range comp.Questions {
		if !subject.IsCanonical(q.Subject) {
			t.Fatalf("question carries non canonical subject %q", q.Subject)
		}
		counts[q.Subject]++
	}
	for _, quota := range Quotas {
		if counts[quota.Subject] != quota.Count {
			t.Fatalf("%s: expected %d, got %d", quota.Subject, quota.Count, counts[quota.Subject])
		}
	}
}

// TestComposeOrdersBuckets verifies questions are grouped in quota order.
func TestComposeOrdersBuckets(t *testing.T) {
	comp := Compose(fullCorpus(), rand.New(rand.NewPCG(5, 6)))

	pos := 0
	for _, quota := range Quotas {
		for range quota.Count {
			if comp.Questions[pos].Subject != quota.Subject {
				t.Fatalf("position %d: expected %s, got %s", pos, quota.Subject, comp.Questions[pos].Subject)
			}
			pos++
		}
	}
}

// TestComposeShortageScenario verifies a short bucket is neither padded nor
// compensated by other buckets.
func TestComposeShortageScenario(t *testing.T) {
	var qs []model.Question
	qs = append(qs, makeQuestions("Curitiba", "Português", 3)...)
	qs = append(qs, makeQuestions("Curitiba", "RLM", 10)...)
	qs = append(qs, makeQuestions("Curitiba", "Informática", 10)...)
	qs = append(qs, makeQuestions("Curitiba", "História", 10)...)
	qs = append(qs, makeQuestions("Curitiba", "Direito Penal", 10)...)
	qs = append(qs, makeQuestions("Curitiba", "Legislação", 10)...)

	comp := Compose(qs, nil)
	if len(comp.Questions) != 38 {
		t.Fatalf("expected 38 questions, got %d", len(comp.Questions))
	}
	if comp.Shortfall != 2 {
		t.Fatalf("expected shortfall 2, got %d", comp.Shortfall)
	}
	if comp.Summary() != "38/40" {
		t.Fatalf("unexpected summary %q", comp.Summary())
	}

	first := comp.Buckets[0]
	if first.Subject != subject.Portuguese || first.Selected != 3 || first.Shortfall != 2 || first.Available != 3 {
		t.Fatalf("unexpected Portuguese bucket %+v", first)
	}
	for _, b := range comp.Buckets[1:] {
		if b.Shortfall != 0 {
			t.Fatalf("bucket %s unexpectedly short", b.Subject)
		}
	}
}

// TestComposeNeverExceedsQuota checks the bounds over random supplies.
func TestComposeNeverExceedsQuota(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	labels := []string{"Português", "RLM", "Informática", "Geografia", "Direito", "Legislação", "Outra coisa"}

	for trial := range 50 {
		var qs []model.Question
		for _, l := range labels {
			qs = append(qs, makeQuestions("Curitiba", l, rng.IntN(15))...)
		}
		comp := Compose(qs, rng)
		if len(comp.Questions) > TargetSize {
			t.Fatalf("trial %d: %d questions exceeds target", trial, len(comp.Questions))
		}
		counts := make(map[string]int)
		for _, q := range comp.Questions {
			counts[q.Subject]++
		}
		for _, quota := range Quotas {
			if counts[quota.Subject] > quota.Count {
				t.Fatalf("trial %d: %s over quota", trial, quota.Subject)
			}
		}
		if len(comp.Questions)+comp.Shortfall != TargetSize {
			t.Fatalf("trial %d: size and shortfall disagree", trial)
		}
	}
}

// TestComposeEmptyCorpus verifies an empty input yields an empty composition.
func TestComposeEmptyCorpus(t *testing.T) {
	comp := Compose(nil, nil)
	if len(comp.Questions) != 0 || comp.Shortfall != TargetSize {
		t.Fatalf("unexpected composition %+v", comp)
	}
}

// TestComposeDoesNotMutateInput verifies raw labels survive composition.
func TestComposeDoesNotMutateInput(t *testing.T) {
	qs := makeQuestions("Curitiba", "Língua Portuguesa", 5)
	Compose(qs, nil)
	for _, q := range qs {
		if q.Subject != "Língua Portuguesa" {
			t.Fatalf("input subject rewritten to %q", q.Subject)
		}
	}
}
