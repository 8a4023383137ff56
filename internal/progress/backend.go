package progress

import (
	"fmt"

	"github.com/gmprep/simulado-backend/internal/config"
)

// New returns the store for backend: config.ProgressDurable keeps answers in
// SQL through repo, config.ProgressLocal keeps one document per user in kv.
func New(backend string, repo Repository, kv KV) (Store, error) {
	switch backend {
	case config.ProgressDurable:
		if repo == nil {
			return nil, fmt.Errorf("progress backend %q needs a database", backend)
		}
		return NewDurableStore(repo), nil
	case config.ProgressLocal:
		if kv == nil {
			return nil, fmt.Errorf("progress backend %q needs a key-value store", backend)
		}
		return NewLocalStore(kv), nil
	default:
		return nil, fmt.Errorf("unknown progress backend %q", backend)
	}
}
