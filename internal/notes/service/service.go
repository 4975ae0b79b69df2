// Package service owns the authoritative note collection: list, create,
// edit, soft delete. The client cache mirrors what this returns; every
// mutation here is the confirmation the client waits for.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"goggins/internal/audit"
	"goggins/internal/notes/models"
	"goggins/internal/platform/metrics"
	dErrors "goggins/pkg/domain-errors"
	"goggins/pkg/sentinel"
)

type Store interface {
	Insert(ctx context.Context, n *models.Note) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Note, error)
	FindByID(ctx context.Context, ownerID, noteID uuid.UUID) (*models.Note, error)
	UpdateContent(ctx context.Context, ownerID, noteID uuid.UUID, title, content string) error
	MarkDeleted(ctx context.Context, ownerID, noteID uuid.UUID) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store   Store
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) { s.auditor = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("note store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// List returns the owner's notes in server order (newest first), including
// soft-deleted rows; clients filter those out.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*models.Note, error) {
	notes, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notes")
	}
	return notes, nil
}

// Create stores a new note and returns the canonical record the client
// prepends to its cache.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "title and content are required")
	}

	n := &models.Note{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create note")
	}

	if s.metrics != nil {
		s.metrics.NotesCreated.Inc()
	}
	s.emit(ctx, audit.Event{UserID: ownerID, Subject: n.ID.String(), Action: string(audit.EventNoteCreated)})
	return n, nil
}

// Update replaces title and content of an existing note. ID and CreatedAt
// never change.
func (s *Service) Update(ctx context.Context, ownerID, noteID uuid.UUID, title, content string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title and content are required")
	}

	err := s.store.UpdateContent(ctx, ownerID, noteID, title, content)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "note not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update note")
	}

	s.emit(ctx, audit.Event{UserID: ownerID, Subject: noteID.String(), Action: string(audit.EventNoteUpdated)})
	return nil
}

// SoftDelete marks the note deleted. Repeating the call is a no-op success:
// the row stays deleted either way.
func (s *Service) SoftDelete(ctx context.Context, ownerID, noteID uuid.UUID) error {
	err := s.store.MarkDeleted(ctx, ownerID, noteID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "note not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete note")
	}

	if s.metrics != nil {
		s.metrics.NotesSoftDeleted.Inc()
	}
	s.emit(ctx, audit.Event{UserID: ownerID, Subject: noteID.String(), Action: string(audit.EventNoteSoftDeleted)})
	return nil
}

// CountLive counts not-deleted notes for the profile view.
func (s *Service) CountLive(ctx context.Context, ownerID uuid.UUID) (int, error) {
	count, err := s.store.CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count notes")
	}
	return count, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
