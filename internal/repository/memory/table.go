package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
)

// table is a mutex-guarded map of records. Every read and write goes through
// clone so callers never share memory with the stored copy.
type table[T any] struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*T
	idOf    func(*T) uuid.UUID
	created func(*T) time.Time
	clone   func(*T) *T
}

func newTable[T any](idOf func(*T) uuid.UUID, created func(*T) time.Time, clone func(*T) *T) *table[T] {
	return &table[T]{
		byID:    make(map[uuid.UUID]*T),
		idOf:    idOf,
		created: created,
		clone:   clone,
	}
}

func (t *table[T]) insert(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.idOf(v)
	if _, exists := t.byID[id]; exists {
		return model.ErrDuplicate
	}
	t.byID[id] = t.clone(v)
	return nil
}

func (t *table[T]) replace(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.idOf(v)
	if _, exists := t.byID[id]; !exists {
		return model.ErrNotFound
	}
	t.byID[id] = t.clone(v)
	return nil
}

func (t *table[T]) get(id uuid.UUID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.byID[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return t.clone(v), nil
}

func (t *table[T]) remove(id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byID[id]; !ok {
		return model.ErrNotFound
	}
	delete(t.byID, id)
	return nil
}

// find returns clones of the matching records, oldest first.
func (t *table[T]) find(match func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*T, 0, len(t.byID))
	for _, v := range t.byID {
		if match == nil || match(v) {
			out = append(out, t.clone(v))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := t.created(out[i]), t.created(out[j])
		if ci.Equal(cj) {
			return t.idOf(out[i]).String() < t.idOf(out[j]).String()
		}
		return ci.Before(cj)
	})
	return out
}

func (t *table[T]) first(match func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, v := range t.byID {
		if match(v) {
			return t.clone(v), nil
		}
	}
	return nil, model.ErrNotFound
}

func (t *table[T]) removeWhere(match func(*T) bool) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var n int64
	for id, v := range t.byID {
		if match(v) {
			delete(t.byID, id)
			n++
		}
	}
	return n
}
