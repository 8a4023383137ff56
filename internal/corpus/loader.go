package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gmprep/simulado-backend/internal/model"
	"github.com/gmprep/simulado-backend/internal/validator"
)

// ErrEmptyCorpus is returned when no source yields a single valid question.
var ErrEmptyCorpus = errors.New("corpus: no questions loaded")

// DefaultParallelism bounds concurrent source fetches.
const DefaultParallelism = 4

// Loader reads the question corpus once and serves it from memory until
// Reload is called. The returned slices are shared and must not be mutated.
type Loader struct {
	batches     []Batch
	parallelism int
	log         zerolog.Logger

	mu     sync.Mutex
	cached []model.Question
	index  map[string]int
}

// NewLoader creates a loader over batches, kept in manifest order.
func NewLoader(batches []Batch, log zerolog.Logger) *Loader {
	return &Loader{
		batches:     batches,
		parallelism: DefaultParallelism,
		log:         log.With().Str("component", "corpus").Logger(),
	}
}

// SetParallelism changes the fetch concurrency limit. Values below 1 reset it
// to the default.
func (l *Loader) SetParallelism(n int) {
	if n < 1 {
		n = DefaultParallelism
	}
	l.mu.Lock()
	l.parallelism = n
	l.mu.Unlock()
}

// LoadAll returns the full corpus, loading it on first use.
func (l *Loader) LoadAll(ctx context.Context) ([]model.Question, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}
	return l.fill(ctx)
}

// Reload drops the cache and loads every source again. On failure the
// previous cache is discarded as well.
func (l *Loader) Reload(ctx context.Context) ([]model.Question, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cached = nil
	l.index = nil
	return l.fill(ctx)
}

// Lookup finds a question by identity. The first occurrence wins.
func (l *Loader) Lookup(ctx context.Context, id string) (model.Question, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached == nil {
		if _, err := l.fill(ctx); err != nil {
			return model.Question{}, false, err
		}
	}
	i, ok := l.index[id]
	if !ok {
		return model.Question{}, false, nil
	}
	return l.cached[i], true, nil
}

// fill must be called with mu held.
func (l *Loader) fill(ctx context.Context) ([]model.Question, error) {
	results := make([][]model.Question, len(l.batches))

	var g errgroup.Group
	g.SetLimit(l.parallelism)
	for i, b := range l.batches {
		g.Go(func() error {
			qs, err := l.fetch(ctx, b)
			if err != nil {
				l.log.Warn().Err(err).Str("source", b.Source.Name()).Msg("Skipping question source")
				return nil
			}
			results[i] = qs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []model.Question
	for _, qs := range results {
		all = append(all, qs...)
	}
	if len(all) == 0 {
		return nil, ErrEmptyCorpus
	}

	index := make(map[string]int, len(all))
	for i, q := range all {
		if _, seen := index[q.ID()]; !seen {
			index[q.ID()] = i
		}
	}

	l.cached = all
	l.index = index
	l.log.Info().Int("questions", len(all)).Int("sources", len(l.batches)).Msg("Corpus loaded")
	return all, nil
}

func (l *Loader) fetch(ctx context.Context, b Batch) ([]model.Question, error) {
	rc, err := b.Source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	raw, err := decodeQuestions(rc)
	if err != nil {
		return nil, err
	}

	valid := make([]model.Question, 0, len(raw))
	for i, q := range raw {
		if err := checkQuestion(&q); err != nil {
			l.log.Warn().Err(err).
				Str("source", b.Source.Name()).
				Int("position", i).
				Msg("Dropping invalid question")
			continue
		}
		if q.SupportText == "" {
			q.SupportText = b.Passage
		}
		valid = append(valid, q)
	}
	return valid, nil
}

func decodeQuestions(r io.Reader) ([]model.Question, error) {
	var qs []model.Question
	if err := json.NewDecoder(r).Decode(&qs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return qs, nil
}

func checkQuestion(q *model.Question) error {
	if err := validator.Struct(q); err != nil {
		return err
	}
	if !q.HasOption(q.Correct) {
		return fmt.Errorf("correct option %q is not among the options", q.Correct)
	}
	return nil
}
