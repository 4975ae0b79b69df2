// Package notes keeps the client's mirror of the server note collection
// consistent across create, update, soft-delete and search, and arbitrates
// which UI surface currently holds write intent. Every mutation is sent
// server-first; the cache changes only after a confirmed reply.
package notes

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"goggins/internal/client/gateway"
	"goggins/internal/notes/models"
)

// ErrUnsavedChanges signals that resolving the current edit intent needs a
// user decision before it can be discarded.
var ErrUnsavedChanges = errors.New("unsaved changes")

// Surface names the UI surface holding an edit intent.
type Surface string

const (
	SurfaceModal      Surface = "modal"
	SurfacePage       Surface = "page"
	SurfacePageCreate Surface = "page_create"
)

// Intent is the single in-flight edit. NoteID is nil for create mode, which
// is a permanent editing state with no viewing predecessor.
type Intent struct {
	Surface Surface
	NoteID  uuid.UUID
	Title   string
	Content string
	Editing bool

	savedTitle   string
	savedContent string
	epoch        uint64
}

// HasChanges reports whether the live draft differs from the last known
// saved values.
func (i *Intent) HasChanges() bool {
	return i.Title != i.savedTitle || i.Content != i.savedContent
}

// IsCreate reports whether the intent has no backing note yet.
func (i *Intent) IsCreate() bool {
	return i.NoteID == uuid.Nil
}

// Gateway is the remote surface the coordinator mutates through.
type Gateway interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, title, content string) (models.Note, error)
	UpdateNote(ctx context.Context, noteID, title, content string) error
	SoftDeleteNote(ctx context.Context, noteID string) error
}

// Coordinator owns the visible note cache and the one edit intent. All
// access goes through its methods; per-note mutation is serialized while a
// save is in flight, but mutations against different notes may overlap.
type Coordinator struct {
	gw     Gateway
	logger *slog.Logger

	mu       sync.Mutex
	cache    []models.Note
	query    string
	intent   *Intent
	inFlight map[uuid.UUID]bool
	epoch    uint64
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func New(gw Gateway, opts ...Option) *Coordinator {
	c := &Coordinator{gw: gw, inFlight: make(map[uuid.UUID]bool)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the cache with the server collection, evicting soft-deleted
// notes so they never become visible again.
func (c *Coordinator) Load(ctx context.Context) error {
	list, err := c.gw.ListNotes(ctx)
	if err != nil {
		return err
	}

	live := make([]models.Note, 0, len(list))
	for _, n := range list {
		if !n.IsDeleted {
			live = append(live, n)
		}
	}

	c.mu.Lock()
	c.cache = live
	c.mu.Unlock()
	return nil
}

// VisibleNotes returns the cache in server order, narrowed by the active
// search query when one is set.
func (c *Coordinator) VisibleNotes() []models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Note, 0, len(c.cache))
	q := strings.ToLower(c.query)
	for _, n := range c.cache {
		if q == "" ||
			strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

func (c *Coordinator) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Coordinator) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// CurrentEditIntent returns a copy of the open intent, or nil.
func (c *Coordinator) CurrentEditIntent() *Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intent == nil {
		return nil
	}
	cp := *c.intent
	return &cp
}

// IsSaving reports whether a mutation for the given note is still in
// flight. The zero UUID tracks create.
func (c *Coordinator) IsSaving(noteID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[noteID]
}

// OpenCreate opens a create surface. A dirty open intent must be resolved
// first; a clean one is silently replaced.
func (c *Coordinator) OpenCreate(surface Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.intent != nil && c.intent.HasChanges() {
		return ErrUnsavedChanges
	}
	c.epoch++
	c.intent = &Intent{Surface: surface, Editing: true, epoch: c.epoch}
	return nil
}

// OpenEdit opens a surface for an existing cached note. The full-page
// surface starts in viewing mode; the modal goes straight to editing.
func (c *Coordinator) OpenEdit(noteID uuid.UUID, surface Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.intent != nil && c.intent.HasChanges() {
		return ErrUnsavedChanges
	}
	n, ok := c.findLocked(noteID)
	if !ok {
		return gateway.Validation("note is not in the cache")
	}

	c.epoch++
	c.intent = &Intent{
		Surface:      surface,
		NoteID:       noteID,
		Title:        n.Title,
		Content:      n.Content,
		Editing:      surface == SurfaceModal,
		savedTitle:   n.Title,
		savedContent: n.Content,
		epoch:        c.epoch,
	}
	return nil
}

// StartEditing flips the full-page surface from viewing to editing. It is
// disabled in create mode, which is already editing.
func (c *Coordinator) StartEditing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intent != nil && !c.intent.IsCreate() {
		c.intent.Editing = true
	}
}

// SetDraft records the live keystrokes of the open intent.
func (c *Coordinator) SetDraft(title, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intent != nil {
		c.intent.Title = title
		c.intent.Content = content
	}
}

// CancelEditing reverts a dirty draft to the last saved values; if the
// draft is dirty the caller must confirm first. Returns the surface to
// viewing mode for existing notes.
func (c *Coordinator) CancelEditing(confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.intent == nil || c.intent.IsCreate() {
		return nil
	}
	if c.intent.HasChanges() && !confirmed {
		return ErrUnsavedChanges
	}
	c.intent.Title = c.intent.savedTitle
	c.intent.Content = c.intent.savedContent
	c.intent.Editing = false
	return nil
}

// CloseSurface resolves the open intent. A dirty draft requires the caller
// to confirm discarding it.
func (c *Coordinator) CloseSurface(confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.intent == nil {
		return nil
	}
	if c.intent.HasChanges() && !confirmed {
		return ErrUnsavedChanges
	}
	c.intent = nil
	return nil
}

// Create persists a new note and prepends the canonical server record to
// the cache. Empty fields are rejected before any network traffic, and on
// failure the invoking surface stays open with its draft intact.
func (c *Coordinator) Create(ctx context.Context, title, content string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, gateway.Validation("Title and content are required")
	}

	if err := c.beginSave(uuid.Nil); err != nil {
		return nil, err
	}
	defer c.endSave(uuid.Nil)

	c.mu.Lock()
	var invoking uint64
	if c.intent != nil && c.intent.IsCreate() {
		invoking = c.intent.epoch
	}
	c.mu.Unlock()

	note, err := c.gw.CreateNote(ctx, title, content)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache = append([]models.Note{note}, c.cache...)
	// Close the create surface that invoked this, but never a surface
	// opened after the request went out.
	if c.intent != nil && c.intent.IsCreate() && c.intent.epoch == invoking {
		c.intent = nil
	}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("note created", "note_id", note.ID)
	}
	return &note, nil
}

// Update edits a cached note server-first. The cache entry changes only
// after confirmation, preserving id and createdAt; an open full-page copy
// of the same note is refreshed to match.
func (c *Coordinator) Update(ctx context.Context, noteID uuid.UUID, title, content string) error {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return gateway.Validation("Title and content are required")
	}

	c.mu.Lock()
	if _, ok := c.findLocked(noteID); !ok {
		c.mu.Unlock()
		return gateway.Validation("note is not in the cache")
	}
	c.mu.Unlock()

	if err := c.beginSave(noteID); err != nil {
		return err
	}
	defer c.endSave(noteID)

	if err := c.gw.UpdateNote(ctx, noteID.String(), title, content); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.cache {
		if c.cache[i].ID == noteID {
			c.cache[i].Title = title
			c.cache[i].Content = content
			break
		}
	}
	if c.intent != nil && c.intent.NoteID == noteID {
		c.intent.Title = title
		c.intent.Content = content
		c.intent.savedTitle = title
		c.intent.savedContent = content
		c.intent.Editing = false
	}
	c.mu.Unlock()
	return nil
}

// SoftDelete removes a note from the visible cache after the server
// confirms, closing its full-page surface if one is open. There is no undo.
func (c *Coordinator) SoftDelete(ctx context.Context, noteID uuid.UUID) error {
	if err := c.beginSave(noteID); err != nil {
		return err
	}
	defer c.endSave(noteID)

	if err := c.gw.SoftDeleteNote(ctx, noteID.String()); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.cache[:0]
	for _, n := range c.cache {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	c.cache = kept
	if c.intent != nil && c.intent.NoteID == noteID {
		c.intent = nil
	}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("note soft-deleted", "note_id", noteID)
	}
	return nil
}

// Commit routes the open intent's draft through Create or Update.
func (c *Coordinator) Commit(ctx context.Context) error {
	c.mu.Lock()
	if c.intent == nil {
		c.mu.Unlock()
		return gateway.Validation("nothing to save")
	}
	intent := *c.intent
	c.mu.Unlock()

	if intent.IsCreate() {
		_, err := c.Create(ctx, intent.Title, intent.Content)
		return err
	}
	return c.Update(ctx, intent.NoteID, intent.Title, intent.Content)
}

func (c *Coordinator) findLocked(noteID uuid.UUID) (models.Note, bool) {
	for _, n := range c.cache {
		if n.ID == noteID {
			return n, true
		}
	}
	return models.Note{}, false
}

// beginSave claims the per-note save slot so a second mutation against the
// same note cannot pipeline behind an unresolved one.
func (c *Coordinator) beginSave(noteID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[noteID] {
		return gateway.Validation("a save for this note is already in progress")
	}
	c.inFlight[noteID] = true
	return nil
}

func (c *Coordinator) endSave(noteID uuid.UUID) {
	c.mu.Lock()
	delete(c.inFlight, noteID)
	c.mu.Unlock()
}
