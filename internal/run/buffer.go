package run

import (
	"sync"

	"rotisserie/internal/model"
)

// Buffer collects canonical records per source in dry-run mode, so a run can
// be inspected or exported without touching the store.
type Buffer struct {
	mu      sync.Mutex
	batches map[string][]model.Record // key: source slug
}

func NewBuffer() *Buffer {
	return &Buffer{batches: make(map[string][]model.Record)}
}

func (b *Buffer) Add(slug string, records []model.Record) {
	if slug == "" {
		return
	}
	b.mu.Lock()
	b.batches[slug] = append(b.batches[slug], records...)
	b.mu.Unlock()
}

// Snapshot returns a copy of the collected batches.
func (b *Buffer) Snapshot() map[string][]model.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string][]model.Record, len(b.batches))
	for slug, recs := range b.batches {
		cp := make([]model.Record, len(recs))
		copy(cp, recs)
		out[slug] = cp
	}
	return out
}
