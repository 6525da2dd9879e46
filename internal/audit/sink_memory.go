package audit

import (
	"context"
	"sync"
)

// MemorySink keeps the most recent events in memory. It backs development
// setups and doubles as the recording sink in tests.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = 1024
	}
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

// Events returns a copy of the recorded events, oldest first.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}
