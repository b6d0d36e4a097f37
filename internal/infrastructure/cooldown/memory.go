// Package cooldown keeps the upstream rate-limit cooldown so that later
// invocations can fail fast instead of calling the AI service.
package cooldown

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local cooldown store.
type Memory struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// Start extends the cooldown to now+d. A shorter request never shortens an
// active cooldown.
func (m *Memory) Start(_ context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	until := m.now().Add(d)
	if until.After(m.until) {
		m.until = until
	}
	return nil
}

func (m *Memory) Remaining(_ context.Context) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	left := m.until.Sub(m.now())
	if left <= 0 {
		return 0, nil
	}
	return left, nil
}
