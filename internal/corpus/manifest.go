package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest lists the question files that make up the corpus, in load order.
type Manifest struct {
	Sources []SourceSpec `yaml:"sources"`
}

// SourceSpec is one manifest entry. Exactly one of Path and URL is set.
type SourceSpec struct {
	Path    string `yaml:"path"`
	URL     string `yaml:"url"`
	Passage string `yaml:"passage"`
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// LoadManifest reads a manifest file. Relative paths resolve against the
// manifest's directory.
func LoadManifest(path string) ([]Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest decodes manifest YAML into batches.
func ParseManifest(data []byte, baseDir string) ([]Batch, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse manifest: empty document")
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	batches := make([]Batch, 0, len(m.Sources))
	for i, spec := range m.Sources {
		switch {
		case spec.Path != "" && spec.URL != "":
			return nil, fmt.Errorf("parse manifest: source %d sets both path and url", i)
		case spec.Path != "":
			p := spec.Path
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			batches = append(batches, Batch{Source: FileSource{Path: p}, Passage: spec.Passage})
		case spec.URL != "":
			batches = append(batches, Batch{Source: HTTPSource{URL: spec.URL, Client: httpClient}, Passage: spec.Passage})
		default:
			return nil, fmt.Errorf("parse manifest: source %d needs a path or url", i)
		}
	}
	return batches, nil
}
