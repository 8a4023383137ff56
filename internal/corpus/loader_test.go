package corpus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestLoadAllPreservesManifestOrder verifies that a slow first source still
// lands first in the merged corpus.
func TestLoadAllPreservesManifestOrder(t *testing.T) {
	slow := &countingSource{
		BytesSource: BytesSource{Label: "slow", Data: fileOf(questionJSON("Curitiba", 1, "Português", "a"))},
		delay:       50 * time.Millisecond,
	}
	fast := BytesSource{Label: "fast", Data: fileOf(
		questionJSON("Araucaria", 1, "Legislação", "b"),
		questionJSON("Araucaria", 2, "Informática", "c"),
	)}

	loader := newTestLoader(t, Batch{Source: slow}, Batch{Source: fast})
	questions, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	want := []string{"Curitiba_1", "Araucaria_1", "Araucaria_2"}
	if len(questions) != len(want) {
		t.Fatalf("expected %d questions, got %d", len(want), len(questions))
	}
	for i, id := range want {
		if questions[i].ID() != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, questions[i].ID())
		}
	}
}

// TestLoadAllSkipsFailingSources verifies failures are omitted, not fatal.
func TestLoadAllSkipsFailingSources(t *testing.T) {
	good := BytesSource{Label: "good", Data: fileOf(questionJSON("Curitiba", 7, "RLM", "d"))}
	broken := BytesSource{Label: "broken", Data: []byte(`{"not": "an array"`)}

	loader := newTestLoader(t,
		Batch{Source: failingSource{name: "offline"}},
		Batch{Source: broken},
		Batch{Source: good},
	)
	questions, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(questions) != 1 || questions[0].ID() != "Curitiba_7" {
		t.Fatalf("expected only Curitiba_7, got %+v", questions)
	}
}

// TestLoadAllDropsInvalidQuestions verifies the answer key must be an option.
func TestLoadAllDropsInvalidQuestions(t *testing.T) {
	data := fileOf(
		questionJSON("Curitiba", 1, "Português", "a"),
		questionJSON("Curitiba", 2, "Português", "e"),
		`{"materia": "", "numero": 3, "enunciado": "x", "alternativas": {"a": "1", "b": "2"}, "correta": "a"}`,
	)
	loader := newTestLoader(t, Batch{Source: BytesSource{Label: "mixed", Data: data}})

	questions, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(questions) != 1 || questions[0].Number != 1 {
		t.Fatalf("expected only question 1 to survive, got %d questions", len(questions))
	}
}

// TestLoadAllEmptyCorpusIsNotCached verifies that a failed load is retried.
func TestLoadAllEmptyCorpusIsNotCached(t *testing.T) {
	src := &countingSource{BytesSource: BytesSource{Label: "empty", Data: []byte(`[]`)}}
	loader := newTestLoader(t, Batch{Source: src})

	for range 2 {
		_, err := loader.LoadAll(context.Background())
		if !errors.Is(err, ErrEmptyCorpus) {
			t.Fatalf("expected ErrEmptyCorpus, got %v", err)
		}
	}
	if got := src.opens.Load(); got != 2 {
		t.Fatalf("expected the source to be opened twice, got %d", got)
	}
}

// TestLoadAllCachesAndReloadRefetches verifies the initialize-once cache.
func TestLoadAllCachesAndReloadRefetches(t *testing.T) {
	src := &countingSource{BytesSource: BytesSource{Label: "one", Data: fileOf(questionJSON("Curitiba", 1, "RLM", "a"))}}
	loader := newTestLoader(t, Batch{Source: src})
	ctx := context.Background()

	for range 3 {
		if _, err := loader.LoadAll(ctx); err != nil {
			t.Fatalf("LoadAll: %v", err)
		}
	}
	if got := src.opens.Load(); got != 1 {
		t.Fatalf("expected one fetch, got %d", got)
	}

	if _, err := loader.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := src.opens.Load(); got != 2 {
		t.Fatalf("expected reload to fetch again, got %d", got)
	}
}

// TestLoadAllAppliesBatchPassage verifies passages fill in missing support text.
func TestLoadAllAppliesBatchPassage(t *testing.T) {
	withText := `{"materia": "Português", "numero": 2, "enunciado": "x",
		"alternativas": {"a": "1", "b": "2"}, "correta": "b", "texto_apoio": "próprio"}`
	data := fileOf(questionJSON("Curitiba", 1, "Português", "a"), withText)
	loader := newTestLoader(t, Batch{Source: BytesSource{Label: "texto", Data: data}, Passage: "Texto I"})

	questions, err := loader.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if questions[0].SupportText != "Texto I" {
		t.Fatalf("expected batch passage, got %q", questions[0].SupportText)
	}
	if questions[1].SupportText != "próprio" {
		t.Fatalf("expected own passage to win, got %q", questions[1].SupportText)
	}
}

// TestLookupFirstOccurrence verifies identity lookup against duplicates.
func TestLookupFirstOccurrence(t *testing.T) {
	first := BytesSource{Label: "first", Data: fileOf(questionJSON("Curitiba", 1, "RLM", "a"))}
	second := BytesSource{Label: "second", Data: fileOf(questionJSON("Curitiba", 1, "Legislação", "b"))}
	loader := newTestLoader(t, Batch{Source: first}, Batch{Source: second})
	ctx := context.Background()

	q, ok, err := loader.Lookup(ctx, "Curitiba_1")
	if err != nil || !ok {
		t.Fatalf("Lookup: ok=%v err=%v", ok, err)
	}
	if q.Correct != "a" {
		t.Fatalf("expected first occurrence, got correct=%q", q.Correct)
	}

	if _, ok, _ := loader.Lookup(ctx, "Curitiba_99"); ok {
		t.Fatalf("expected unknown identity to miss")
	}
}

// TestLookupDuringReload verifies lookups stay consistent while the corpus
// is reloaded with a different size.
func TestLookupDuringReload(t *testing.T) {
	loader := newTestLoader(t, Batch{Source: &alternatingSource{}})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			if _, err := loader.Reload(ctx); err != nil {
				t.Errorf("Reload: %v", err)
				return
			}
		}
	}()

	for range 200 {
		q, ok, err := loader.Lookup(ctx, "Curitiba_3")
		if err != nil {
			t.Fatalf("Lookup: %v", err)
		}
		if ok && q.Number != 3 {
			t.Fatalf("expected question 3, got %d", q.Number)
		}
	}
	wg.Wait()
}

// TestLoadAllHonoursCancellation verifies a cancelled context aborts the load.
func TestLoadAllHonoursCancellation(t *testing.T) {
	src := &countingSource{
		BytesSource: BytesSource{Label: "slow", Data: fileOf(questionJSON("Curitiba", 1, "RLM", "a"))},
		delay:       time.Second,
	}
	loader := newTestLoader(t, Batch{Source: src})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.LoadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
