package practice

import (
	"context"
	"sync"
	"time"

	"github.com/example/vocabquiz/pkg/models"
)

type usedSet struct {
	ids       models.IDSet
	expiresAt time.Time
}

// MemoryExclusionStore is an ExclusionStore kept in process memory.
// A whole set expires together, ttl after its last claim.
type MemoryExclusionStore struct {
	mu   sync.Mutex
	sets map[string]*usedSet
	now  func() time.Time
}

// NewMemoryExclusionStore creates an empty store
func NewMemoryExclusionStore() *MemoryExclusionStore {
	return &MemoryExclusionStore{
		sets: make(map[string]*usedSet),
		now:  time.Now,
	}
}

// Get returns a copy of the live set under key
func (m *MemoryExclusionStore) Get(_ context.Context, key string) (models.IDSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.live(key)
	if set == nil {
		return models.IDSet{}, nil
	}
	return set.ids.Clone(), nil
}

// Claim adds ids under key and returns those that were not there yet
func (m *MemoryExclusionStore) Claim(_ context.Context, key string, ids []int64, ttl time.Duration) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.live(key)
	if set == nil {
		set = &usedSet{ids: models.IDSet{}}
		m.sets[key] = set
	}

	claimed := make([]int64, 0, len(ids))
	for _, id := range ids {
		if set.ids.Has(id) {
			continue
		}
		set.ids.Add(id)
		claimed = append(claimed, id)
	}
	set.expiresAt = m.now().Add(ttl)
	return claimed, nil
}

// PurgeExpired drops expired sets and returns how many ids they held
func (m *MemoryExclusionStore) PurgeExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	now := m.now()
	for key, set := range m.sets {
		if !now.Before(set.expiresAt) {
			n += int64(len(set.ids))
			delete(m.sets, key)
		}
	}
	return n, nil
}

// live returns the set under key, dropping it when expired. Caller holds mu.
func (m *MemoryExclusionStore) live(key string) *usedSet {
	set, ok := m.sets[key]
	if !ok {
		return nil
	}
	if !m.now().Before(set.expiresAt) {
		delete(m.sets, key)
		return nil
	}
	return set
}
