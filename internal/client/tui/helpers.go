package tui

import (
	"strings"

	"github.com/google/uuid"

	"goggins/internal/client/gateway"
	"goggins/internal/client/signup"
	"goggins/internal/notes/models"
)

func (m *appModel) setFormFocus(f signupField) {
	m.formFocus = f
	for i := range m.formInputs {
		if signupField(i) == f {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m *appModel) country() signup.Country {
	return signup.Countries()[m.countryIdx]
}

func (m *appModel) signupForm() gateway.SignupForm {
	return gateway.SignupForm{
		Email:       strings.TrimSpace(m.formInputs[fieldEmail].Value()),
		Password:    m.formInputs[fieldPassword].Value(),
		FirstName:   strings.TrimSpace(m.formInputs[fieldFirstName].Value()),
		CountryCode: m.country().Code,
		PhoneNumber: m.formInputs[fieldPhone].Value(),
	}
}

// sanitizePhone mirrors the form rule: digits only, capped at the selected
// country's exact length.
func sanitizePhone(value string, maxDigits int) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' && b.Len() < maxDigits {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// otpCursor clamps the machine focus to an addressable slot; past-the-end
// focus edits the last slot, the same way a form keeps the caret on the
// final input once every slot is filled.
func otpCursor(focus int) int {
	if focus > 5 {
		return 5
	}
	return focus
}

func (m *appModel) clampNoteIdx() {
	n := len(m.coord.VisibleNotes())
	if m.noteIdx >= n {
		m.noteIdx = n - 1
	}
	if m.noteIdx < 0 {
		m.noteIdx = 0
	}
}

func (m *appModel) selectedNote() (models.Note, bool) {
	visible := m.coord.VisibleNotes()
	if m.noteIdx < 0 || m.noteIdx >= len(visible) {
		return models.Note{}, false
	}
	return visible[m.noteIdx], true
}

func (m *appModel) openEditor(title, content string) {
	m.modal = modalEditor
	m.titleInput.SetValue(title)
	m.contentArea.SetValue(content)
	m.titleInput.Focus()
	m.contentArea.Blur()
}

// syncPageInputs refreshes the page inputs from the coordinator's intent,
// used after a cancel reverts the draft.
func (m *appModel) syncPageInputs() {
	if intent := m.coord.CurrentEditIntent(); intent != nil {
		m.titleInput.SetValue(intent.Title)
		m.contentArea.SetValue(intent.Content)
	}
	m.titleInput.Blur()
	m.contentArea.Blur()
}

// deleteTarget resolves which note a confirmed delete applies to: the open
// page surface's note, or the list selection.
func (m *appModel) deleteTarget() *uuid.UUID {
	if m.view == viewNotePage {
		if intent := m.coord.CurrentEditIntent(); intent != nil && !intent.IsCreate() {
			id := intent.NoteID
			return &id
		}
		return nil
	}
	if n, ok := m.selectedNote(); ok {
		id := n.ID
		return &id
	}
	return nil
}
