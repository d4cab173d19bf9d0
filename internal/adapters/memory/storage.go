package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/tidwall/btree"

	"tagit/internal/ports"
)

// Storage keeps associations in an ordered B-tree.
// Nothing survives Close; it backs tests and the memory backend.
type Storage struct {
	mu   sync.RWMutex
	tags *btree.Map[string, []string]
}

// Ensure Storage implements TagStorage and TagMover
var (
	_ ports.TagStorage = (*Storage)(nil)
	_ ports.TagMover   = (*Storage)(nil)
)

// NewStorage creates an empty in-memory storage
func NewStorage() *Storage {
	return &Storage{
		tags: btree.NewMap[string, []string](0),
	}
}

// Read returns a copy of the list stored under key
func (s *Storage) Read(ctx context.Context, key string) ([]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tags, ok := s.tags.Get(key)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(tags), true, nil
}

// Write replaces the list stored under key
func (s *Storage) Write(ctx context.Context, key string, tags []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags.Set(key, slices.Clone(tags))
	return nil
}

// Delete removes key if present
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags.Delete(key)
	return nil
}

// Keys returns every key in ascending order
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, s.tags.Len())
	s.tags.Scan(func(key string, _ []string) bool {
		keys = append(keys, key)
		return true
	})
	return keys, nil
}

// Move writes tags under newKey and drops oldKey under one lock
func (s *Storage) Move(ctx context.Context, oldKey, newKey string, tags []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags.Set(newKey, slices.Clone(tags))
	s.tags.Delete(oldKey)
	return nil
}

// Close drops all data
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags.Clear()
	return nil
}
