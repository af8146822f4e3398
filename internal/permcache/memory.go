package permcache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore is the in-process tier, an expirable LRU.
type MemoryStore struct {
	cache *lru.LRU[string, *Entry]
}

// NewMemoryStore creates a MemoryStore holding at most size entries for ttl.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size < 1 {
		size = 1
	}
	return &MemoryStore{
		cache: lru.NewLRU[string, *Entry](size, nil, ttl),
	}
}

func (s *MemoryStore) Name() string { return "memory" }

// Load returns a copy of the stored entry.
func (s *MemoryStore) Load(_ context.Context, userID string) (*Entry, error) {
	entry, ok := s.cache.Get(userID)
	if !ok {
		return nil, ErrMiss
	}
	cp := *entry
	cp.Permissions = entry.Permissions.Clone()
	return &cp, nil
}

func (s *MemoryStore) Save(_ context.Context, entry *Entry) error {
	cp := *entry
	cp.Permissions = entry.Permissions.Clone()
	s.cache.Add(entry.UserID, &cp)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.cache.Remove(userID)
	return nil
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
