package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/learnhub/internal/store"
)

// Backend keeps documents in process memory. It is safe for concurrent use;
// nothing survives a restart.
type Backend struct {
	mu    sync.RWMutex
	kinds map[string]map[string][]byte // kind -> id -> document
}

func NewBackend() *Backend {
	return &Backend{
		kinds: make(map[string]map[string][]byte),
	}
}

func (b *Backend) Insert(_ context.Context, kind, id string, doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items, ok := b.kinds[kind]
	if !ok {
		items = make(map[string][]byte)
		b.kinds[kind] = items
	}

	if _, exists := items[id]; exists {
		return store.ErrIDTaken
	}

	if field, ok := store.UniqueFields[kind]; ok {
		if value, ok := store.FieldValue(doc, field); ok {
			for _, existing := range items {
				if store.MatchField(existing, field, value) {
					return store.ErrConflict
				}
			}
		}
	}

	items[id] = clone(doc)
	return nil
}

func (b *Backend) Fetch(_ context.Context, kind, id string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	doc, ok := b.kinds[kind][id]
	if !ok {
		return nil, store.ErrNotFound
	}

	return clone(doc), nil
}

func (b *Backend) All(_ context.Context, kind string) ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.collect(kind, func([]byte) bool { return true }), nil
}

func (b *Backend) Match(_ context.Context, kind, field, value string) ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.collect(kind, func(doc []byte) bool {
		return store.MatchField(doc, field, value)
	}), nil
}

// Modify holds the write lock across fn so concurrent updates of one id
// serialize.
func (b *Backend) Modify(_ context.Context, kind, id string, fn func([]byte) ([]byte, error)) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.kinds[kind][id]
	if !ok {
		return nil, store.ErrNotFound
	}

	next, err := fn(clone(current))
	if err != nil {
		return nil, err
	}

	b.kinds[kind][id] = clone(next)
	return clone(next), nil
}

func (b *Backend) Ping(context.Context) error { return nil }

func (b *Backend) Close() error { return nil }

// collect must be called with b.mu held.
func (b *Backend) collect(kind string, keep func([]byte) bool) [][]byte {
	items := b.kinds[kind]

	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		if doc := items[id]; keep(doc) {
			out = append(out, clone(doc))
		}
	}
	return out
}

func clone(doc []byte) []byte {
	out := make([]byte, len(doc))
	copy(out, doc)
	return out
}
