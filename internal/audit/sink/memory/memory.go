package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"goggins/internal/audit"
)

type InMemorySink struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]audit.Event
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{events: make(map[uuid.UUID][]audit.Event)}
}

func (s *InMemorySink) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.UserID] = append(s.events[event.UserID], event)
	return nil
}

func (s *InMemorySink) ListByUser(_ context.Context, userID uuid.UUID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[userID]...), nil
}

func (s *InMemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[uuid.UUID][]audit.Event)
}
