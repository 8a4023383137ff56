package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Source is one question file of the corpus.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Batch pairs a source with data shared by every question it yields.
type Batch struct {
	Source Source
	// Passage is a reading text attached to questions that carry none.
	Passage string
}

// Batches wraps plain sources into batches without passages.
func Batches(sources ...Source) []Batch {
	out := make([]Batch, len(sources))
	for i, s := range sources {
		out[i] = Batch{Source: s}
	}
	return out
}

// FileSource reads a question file from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// HTTPSource fetches a question file over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Name() string { return s.URL }

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// BytesSource serves an in-memory file. Used for embedded fixtures and tests.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string { return s.Label }

func (s BytesSource) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}
