package state

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-settings/layering"
	"github.com/goliatone/go-settings/pathresolve"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. It uses Ref.Identifier() as its deterministic key and keeps
// the previous snapshot of every key under its backup path.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{Path: key}, false, nil
	}
	return layering.Clone(record.snapshot), record.meta, true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	meta := Meta{Path: key, UpdatedAt: time.Now()}
	s.mu.Lock()
	if previous, ok := s.records[key]; ok {
		backup := pathresolve.BackupPath(key)
		s.records[backup] = memoryRecord[T]{snapshot: previous.snapshot, meta: Meta{Path: backup, UpdatedAt: previous.meta.UpdatedAt}}
		meta.BackupPath = backup
	}
	s.records[key] = memoryRecord[T]{snapshot: layering.Clone(snapshot), meta: meta}
	s.mu.Unlock()
	return meta, nil
}

// Backup returns the snapshot kept from before the last overwrite of ref.
func (s *MemoryStore[T]) Backup(ref Ref) (T, bool) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, false
	}
	s.mu.RLock()
	record, ok := s.records[pathresolve.BackupPath(key)]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	return layering.Clone(record.snapshot), true
}
