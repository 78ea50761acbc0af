package cache

import (
	"context"
	"sync"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/models"
)

// Memory keeps encoded entries in a map. Entries are stored serialized so a
// caller mutating a returned analysis cannot change what is cached.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
	opts    Options
}

func NewMemory(opts Options) *Memory {
	return &Memory{
		entries: make(map[string][]byte),
		opts:    opts.withDefaults(),
	}
}

func (m *Memory) Get(_ context.Context, q models.AreaQuery) (*models.AreaAnalysis, bool, error) {
	now := m.opts.Now()
	key := Key(m.opts.KeyPrefix, q, now)

	m.mu.RLock()
	data, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	e, err := decodeEntry(data)
	if err != nil {
		return nil, false, errors.NewCacheReadFailedError(key, err)
	}
	a, live := e.hit(now)
	if !live {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
	}
	return a, live, nil
}

func (m *Memory) Put(_ context.Context, q models.AreaQuery, a *models.AreaAnalysis) error {
	now := m.opts.Now()
	key := Key(m.opts.KeyPrefix, q, now)

	data, err := encodeEntry(newEntry(a, now, m.opts.TTL))
	if err != nil {
		return errors.NewCacheWriteFailedError(key, err)
	}

	m.mu.Lock()
	m.entries[key] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, q models.AreaQuery) error {
	key := Key(m.opts.KeyPrefix, q, m.opts.Now())
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
