package mocks

import (
	"sync"
	"time"

	"github.com/arcadelab/gamehub/internal/dependencies/clock"
)

// MockClock is a Clock pinned to a fixed time for tests. Sessions and
// the worker reaper read the clock from their own goroutines, so
// access is mutex-guarded.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock pinned to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the pinned time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
