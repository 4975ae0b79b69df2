package otp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"goggins/internal/identity/models"
	"goggins/pkg/sentinel"
)

// InMemoryStore holds pending OTP records with lazy expiry.
type InMemoryStore struct {
	mu      sync.RWMutex
	pending map[uuid.UUID]*models.PendingOTP
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{pending: make(map[uuid.UUID]*models.PendingOTP)}
}

func (s *InMemoryStore) Save(_ context.Context, p *models.PendingOTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.pending[p.UserID] = &cp
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, userID uuid.UUID) (*models.PendingOTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if time.Now().After(p.ExpiresAt) {
		delete(s.pending, userID)
		return nil, sentinel.ErrExpired
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userID)
	return nil
}
