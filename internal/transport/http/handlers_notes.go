package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"goggins/internal/notes/models"
	dErrors "goggins/pkg/domain-errors"
)

type NoteService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]*models.Note, error)
	Create(ctx context.Context, ownerID uuid.UUID, title, content string) (*models.Note, error)
	Update(ctx context.Context, ownerID, noteID uuid.UUID, title, content string) error
	SoftDelete(ctx context.Context, ownerID, noteID uuid.UUID) error
}

type NotesHandler struct {
	notes NoteService
}

func NewNotesHandler(notes NoteService) *NotesHandler {
	return &NotesHandler{notes: notes}
}

func (h *NotesHandler) Register(r chi.Router) {
	r.Get("/auth/notes", h.handleList)
	r.Post("/auth/notes", h.handleCreate)
	r.Put("/auth/notes", h.handleUpdate)
	r.Patch("/auth/notes", h.handleSetDeleted)
}

func (h *NotesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.List(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NotesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	note, err := h.notes.Create(r.Context(), UserIDFrom(r.Context()), req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]*models.Note{"note": note})
}

func (h *NotesHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NoteID  string `json:"noteId"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	noteID, err := uuid.Parse(req.NoteID)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid note id"))
		return
	}

	if err := h.notes.Update(r.Context(), UserIDFrom(r.Context()), noteID, req.Title, req.Content); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note updated"})
}

// handleSetDeleted only supports marking a note deleted; deletion is never
// reversed through this endpoint.
func (h *NotesHandler) handleSetDeleted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NoteID    string `json:"noteId"`
		IsDeleted bool   `json:"is_deleted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	noteID, err := uuid.Parse(req.NoteID)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid note id"))
		return
	}
	if !req.IsDeleted {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "notes can only be marked deleted"))
		return
	}

	if err := h.notes.SoftDelete(r.Context(), UserIDFrom(r.Context()), noteID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
}
