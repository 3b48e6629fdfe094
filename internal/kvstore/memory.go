package kvstore

import (
	"context"
	"sync"

	goCache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps counters in process memory. Values never expire.
type MemoryStore struct {
	mu    sync.Mutex
	cache *goCache.Cache
	quota int
}

// NewMemoryStore creates an in-memory store; quota of zero disables the size check
func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		cache: goCache.New(goCache.NoExpiration, 0),
		quota: quota,
	}
}

func (s *MemoryStore) GetInt(_ context.Context, key string) (int, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return 0, nil
	}
	raw, _ := v.([]byte)
	return decodeInt(raw), nil
}

func (s *MemoryStore) SetInt(_ context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := encodeInt(value)
	if s.quota > 0 {
		used := len(key) + len(raw)
		for k, item := range s.cache.Items() {
			if k == key {
				continue
			}
			b, _ := item.Object.([]byte)
			used += len(k) + len(b)
		}
		if used > s.quota {
			return quotaError(key, used, s.quota)
		}
	}

	s.cache.Set(key, raw, goCache.NoExpiration)
	return nil
}
