package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// questionJSON renders one corpus entry.
func questionJSON(city string, number int, materia, correct string) string {
	return fmt.Sprintf(`{
		"origem": {"cidade": %q, "ano": 2024, "banca": "IBFC"},
		"materia": %q,
		"numero": %d,
		"enunciado": "Enunciado %d",
		"alternativas": {"a": "um", "b": "dois", "c": "tres", "d": "quatro"},
		"correta": %q,
		"explicacao": "Porque sim."
	}`, city, materia, number, number, correct)
}

func fileOf(entries ...string) []byte {
	return []byte("[" + strings.Join(entries, ",") + "]")
}

// countingSource counts opens and may delay before serving.
type countingSource struct {
	BytesSource
	delay time.Duration
	opens atomic.Int32
}

func (s *countingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	s.opens.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.BytesSource.Open(ctx)
}

// alternatingSource serves three questions on odd opens and one on even opens.
type alternatingSource struct {
	opens atomic.Int32
}

func (s *alternatingSource) Name() string { return "alternating" }

func (s *alternatingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	entries := []string{questionJSON("Curitiba", 1, "RLM", "a")}
	if s.opens.Add(1)%2 == 1 {
		entries = append(entries,
			questionJSON("Curitiba", 2, "RLM", "a"),
			questionJSON("Curitiba", 3, "RLM", "a"))
	}
	return BytesSource{Label: s.Name(), Data: fileOf(entries...)}.Open(ctx)
}

type failingSource struct{ name string }

func (s failingSource) Name() string { return s.name }

func (s failingSource) Open(context.Context) (io.ReadCloser, error) {
	return nil, errors.New("connection refused")
}

func newTestLoader(t *testing.T, batches ...Batch) *Loader {
	t.Helper()
	return NewLoader(batches, zerolog.Nop())
}
