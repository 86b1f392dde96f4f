package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/arzdex/arzdex/internal/core/repository"
)

// Repo is an in-memory StateRepository. Values are stored as JSON so load
// and save behave exactly like the postgres implementation. Used by tests
// and by local runs without a database.
type Repo struct {
	mu      sync.Mutex
	records map[string][]byte

	// FailWrites makes every save return an error. Tests use it to verify
	// that a storage failure never leaves in-memory state ahead of disk.
	FailWrites bool
}

func NewRepo() *Repo {
	return &Repo{records: map[string][]byte{}}
}

func (r *Repo) Save(ctx context.Context, key string, value any) error {
	return r.SaveAll(ctx, map[string]any{key: value})
}

func (r *Repo) SaveAll(_ context.Context, records map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites {
		return fmt.Errorf("save state: write failure injected")
	}

	staged := make(map[string][]byte, len(records))
	for key, value := range records {
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal state %q: %w", key, err)
		}
		staged[key] = payload
	}
	for key, payload := range staged {
		r.records[key] = payload
	}
	return nil
}

func (r *Repo) Load(_ context.Context, key string, dest any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, ok := r.records[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("unmarshal state %q: %w", key, err)
	}
	return true, nil
}

var _ repository.StateRepository = (*Repo)(nil)
