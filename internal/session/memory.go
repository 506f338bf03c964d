package session

import (
	"context"
	"slices"
	"sync"
)

type memoryJournal struct {
	mu      sync.RWMutex
	history map[string][]Exchange
}

// NewMemoryJournal returns a Journal backed by per-token slices.
func NewMemoryJournal() Journal {
	return &memoryJournal{history: make(map[string][]Exchange)}
}

func (j *memoryJournal) Append(ctx context.Context, token string, ex Exchange) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.history[token] = append(j.history[token], ex)
	return nil
}

// List returns the most recent limit exchanges, oldest first. limit <= 0
// returns everything.
func (j *memoryJournal) List(ctx context.Context, token string, limit int) ([]Exchange, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	h := j.history[token]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	return slices.Clone(h), nil
}
