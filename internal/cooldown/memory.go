package cooldown

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu        sync.Mutex
	deadlines map[string]time.Time
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deadlines: make(map[string]time.Time),
		now:       time.Now,
	}
}

func (m *MemoryStore) Start(ctx context.Context, key string, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deadlines[key] = m.now().Add(d)
	return nil
}

func (m *MemoryStore) TryStart(ctx context.Context, key string, d time.Duration) (time.Duration, bool, error) {
	if ctx.Err() != nil {
		return 0, false, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if deadline, ok := m.deadlines[key]; ok {
		if left := deadline.Sub(now); left > 0 {
			return left, false, nil
		}
	}
	m.deadlines[key] = now.Add(d)
	return 0, true, nil
}

func (m *MemoryStore) Release(ctx context.Context, key string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.deadlines, key)
	return nil
}

func (m *MemoryStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline, ok := m.deadlines[key]
	if !ok {
		return 0, nil
	}
	left := deadline.Sub(m.now())
	if left <= 0 {
		delete(m.deadlines, key)
		return 0, nil
	}
	return left, nil
}
