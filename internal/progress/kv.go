package progress

import (
	"context"
	"slices"
	"sync"
)

// KV is the key-value backend of a LocalStore. Update performs an atomic
// read-modify-write; fn receives nil when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data[key]), nil
}

func (m *MemoryKV) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(slices.Clone(m.data[key]))
	if err != nil {
		return err
	}
	m.data[key] = next
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
