package locks

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// ReleaseFunc frees an acquired lock.
type ReleaseFunc func()

// Manager serializes timer mutations per ticket. Acquisition waits a bounded
// time and fails with domain.ErrBusy rather than blocking the caller.
type Manager interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// MemoryManager is an in-process keyed lock for tests and single-instance
// deployments without Redis.
type MemoryManager struct {
	mu    sync.Mutex
	held  map[string]struct{}
	wait  time.Duration
	retry time.Duration
}

// NewMemoryManager builds a manager with the given acquisition bound.
func NewMemoryManager(wait time.Duration) *MemoryManager {
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &MemoryManager{
		held:  make(map[string]struct{}),
		wait:  wait,
		retry: 10 * time.Millisecond,
	}
}

// Acquire takes the lock for key, polling until the wait bound elapses.
func (m *MemoryManager) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	deadline := time.Now().Add(m.wait)
	for {
		if m.tryLock(key) {
			return func() { m.unlock(key) }, nil
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retry):
		}
	}
}

func (m *MemoryManager) tryLock(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.held[key]; taken {
		return false
	}
	m.held[key] = struct{}{}
	return true
}

func (m *MemoryManager) unlock(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
}
