package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"goggins/internal/notes/models"
	"goggins/pkg/sentinel"
)

// InMemoryStore keeps notes per owner in insertion order, newest first, so
// List matches what the SQL store's ORDER BY created_at DESC returns.
type InMemoryStore struct {
	mu    sync.RWMutex
	notes map[uuid.UUID][]*models.Note // owner -> notes, newest first
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notes: make(map[uuid.UUID][]*models.Note)}
}

func (s *InMemoryStore) Insert(_ context.Context, n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.notes[n.OwnerID] = append([]*models.Note{&cp}, s.notes[n.OwnerID]...)
	return nil
}

// ListByOwner returns every note including soft-deleted rows; filtering is
// the caller's concern, as in the original API.
func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Note, 0, len(s.notes[ownerID]))
	for _, n := range s.notes[ownerID] {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, ownerID, noteID uuid.UUID) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes[ownerID] {
		if n.ID == noteID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// UpdateContent replaces title and content, leaving id and created_at alone.
func (s *InMemoryStore) UpdateContent(_ context.Context, ownerID, noteID uuid.UUID, title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes[ownerID] {
		if n.ID == noteID {
			n.Title = title
			n.Content = content
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) MarkDeleted(_ context.Context, ownerID, noteID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes[ownerID] {
		if n.ID == noteID {
			n.IsDeleted = true
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// CountByOwner counts live (not soft-deleted) notes for the profile view.
func (s *InMemoryStore) CountByOwner(_ context.Context, ownerID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notes[ownerID] {
		if !n.IsDeleted {
			count++
		}
	}
	return count, nil
}
