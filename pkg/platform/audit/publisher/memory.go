package publisher

import (
	"context"
	"sync"
	"time"

	audit "github.com/Ignacio1972/mineria-sub004/pkg/platform/audit"
)

const flushTimeout = 5 * time.Second

// MemoryPublisher records events in memory. Used in tests and as a stand-in
// when no brokers are configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

// NewMemory returns an empty in-memory publisher.
func NewMemory() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]audit.Event, len(p.events))
	copy(out, p.events)
	return out
}
