package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"goggins/internal/client/gateway"
	"goggins/internal/client/notes"
	"goggins/internal/client/signup"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.contentArea.SetWidth(min(m.width-6, 72))
		return m, nil

	case sessionProbeMsg:
		if msg.authenticated {
			m.view = viewNotes
			return m, tea.Batch(loadNotesCmd(m.coord), fetchProfileCmd(m.gw))
		}
		return m, nil

	case loginDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = gateway.MessageOf(msg.err)
			return m, nil
		}
		m.userName = msg.name
		m.errMsg = ""
		m.view = viewNotes
		return m, tea.Batch(loadNotesCmd(m.coord), fetchProfileCmd(m.gw))

	case logoutDoneMsg:
		m.loading = false
		m.view = viewLogin
		m.userName = ""
		m.profile = gateway.Profile{}
		m.status = ""
		m.errMsg = ""
		return m, nil

	case signupSubmitMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = gateway.MessageOf(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = ""
		m.view = viewOtp
		return m, nil

	case verifyDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = gateway.MessageOf(msg.err)
			return m, nil
		}
		// Terminal success; the only move left is back to login.
		m.errMsg = ""
		m.status = m.signup.Status()
		m.view = viewLogin
		return m, nil

	case resendDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = gateway.MessageOf(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = m.signup.Status()
		return m, nil

	case notesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = gateway.MessageOf(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.clampNoteIdx()
		return m, nil

	case profileMsg:
		if msg.err == nil {
			m.profile = msg.profile
			if m.userName == "" {
				m.userName = msg.profile.Name
			}
		}
		return m, nil

	case saveDoneMsg:
		m.loading = false
		if msg.err != nil {
			// The invoking surface stays open with the draft intact.
			m.errMsg = gateway.MessageOf(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = "Saved"
		if m.modal == modalEditor {
			_ = m.coord.CloseSurface(true)
			m.modal = modalNone
		}
		if msg.closeAfter {
			_ = m.coord.CloseSurface(true)
		}
		if m.coord.CurrentEditIntent() == nil {
			m.view = viewNotes
		}
		m.clampNoteIdx()
		return m, fetchProfileCmd(m.gw)

	case deleteDoneMsg:
		m.loading = false
		m.modal = modalNone
		if msg.err != nil {
			m.errMsg = gateway.MessageOf(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = "Note deleted"
		if m.view == viewNotePage && m.coord.CurrentEditIntent() == nil {
			m.view = viewNotes
		}
		m.clampNoteIdx()
		return m, fetchProfileCmd(m.gw)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		switch m.view {
		case viewLogin:
			return m.updateLogin(msg)
		case viewSignupForm:
			return m.updateSignupForm(msg)
		case viewOtp:
			return m.updateOtp(msg)
		case viewNotes:
			return m.updateNotesList(msg)
		case viewNotePage:
			return m.updateNotePage(msg)
		}
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.loginEmail.Focus()
			m.loginPassword.Blur()
		} else {
			m.loginPassword.Focus()
			m.loginEmail.Blur()
		}
		return m, nil
	case "enter":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.errMsg = ""
		return m, loginCmd(m.gw, m.loginEmail.Value(), m.loginPassword.Value())
	case "ctrl+s":
		m.view = viewSignupForm
		m.errMsg = ""
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.loginEmail, cmd = m.loginEmail.Update(msg)
	} else {
		m.loginPassword, cmd = m.loginPassword.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateSignupForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewLogin
		m.errMsg = ""
		return m, nil
	case "tab", "down":
		m.setFormFocus((m.formFocus + 1) % signupFieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFormFocus((m.formFocus + signupFieldCount - 1) % signupFieldCount)
		return m, nil
	case "enter":
		if m.loading {
			return m, nil
		}
		form := m.signupForm()
		// Local preconditions fail fast so nothing leaves the machine.
		if err := signup.ValidateForm(form); err != nil {
			m.errMsg = gateway.MessageOf(err)
			return m, nil
		}
		m.loading = true
		m.errMsg = ""
		return m, submitSignupCmd(m.signup, form)
	case "left", "right":
		if m.formFocus == fieldCountry {
			all := signup.Countries()
			if msg.String() == "right" {
				m.countryIdx = (m.countryIdx + 1) % len(all)
			} else {
				m.countryIdx = (m.countryIdx + len(all) - 1) % len(all)
			}
			// Length rules differ per country, so a stale number is dropped.
			m.formInputs[fieldPhone].SetValue("")
			return m, nil
		}
	}

	if m.formFocus == fieldCountry {
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	if m.formFocus == fieldPhone {
		m.formInputs[fieldPhone].SetValue(sanitizePhone(m.formInputs[fieldPhone].Value(), m.country().Digits))
	}
	return m, cmd
}

func (m appModel) updateOtp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.signup.Cancel()
		m.view = viewSignupForm
		m.errMsg = ""
		m.status = ""
		return m, nil
	case "backspace":
		m.signup.DeleteOtpDigit(otpCursor(m.signup.Focus()))
		return m, nil
	case "enter":
		m.loading = true
		m.errMsg = ""
		return m, verifyOtpCmd(m.signup)
	case "ctrl+r":
		m.loading = true
		m.errMsg = ""
		return m, resendOtpCmd(m.signup)
	}

	if msg.Type == tea.KeyRunes {
		if len(msg.Runes) > 1 {
			// Bracketed paste arrives as a single multi-rune key.
			m.signup.PasteOtp(string(msg.Runes))
			return m, nil
		}
		m.signup.EditOtpDigit(otpCursor(m.signup.Focus()), msg.Runes[0])
	}
	return m, nil
}

func (m appModel) updateNotesList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.coord.SetQuery("")
			m.clampNoteIdx()
			return m, nil
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.coord.SetQuery(m.searchInput.Value())
		m.clampNoteIdx()
		return m, cmd
	}

	switch msg.String() {
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, nil
	case "up", "k":
		if m.noteIdx > 0 {
			m.noteIdx--
		}
		return m, nil
	case "down", "j":
		if m.noteIdx < len(m.coord.VisibleNotes())-1 {
			m.noteIdx++
		}
		return m, nil
	case "r":
		m.loading = true
		return m, loadNotesCmd(m.coord)
	case "n":
		if err := m.coord.OpenCreate(notes.SurfaceModal); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.openEditor("", "")
		return m, nil
	case "c":
		if err := m.coord.OpenCreate(notes.SurfacePageCreate); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.view = viewNotePage
		m.titleInput.SetValue("")
		m.contentArea.SetValue("")
		m.titleInput.Focus()
		m.contentArea.Blur()
		return m, nil
	case "enter":
		if n, ok := m.selectedNote(); ok {
			if err := m.coord.OpenEdit(n.ID, notes.SurfacePage); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.view = viewNotePage
			m.titleInput.SetValue(n.Title)
			m.contentArea.SetValue(n.Content)
		}
		return m, nil
	case "e":
		if n, ok := m.selectedNote(); ok {
			if err := m.coord.OpenEdit(n.ID, notes.SurfaceModal); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.openEditor(n.Title, n.Content)
		}
		return m, nil
	case "d":
		if _, ok := m.selectedNote(); ok {
			m.modal = modalConfirmDelete
		}
		return m, nil
	case "ctrl+l":
		m.loading = true
		return m, logoutCmd(m.gw)
	}
	return m, nil
}

func (m appModel) updateNotePage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	intent := m.coord.CurrentEditIntent()
	if intent == nil {
		m.view = viewNotes
		return m, nil
	}

	if !intent.Editing {
		// Viewing mode for an existing note.
		switch msg.String() {
		case "e":
			m.coord.StartEditing()
			m.titleInput.Focus()
			m.contentArea.Blur()
			return m, nil
		case "d":
			m.modal = modalConfirmDelete
			return m, nil
		case "esc", "q":
			_ = m.coord.CloseSurface(true)
			m.view = viewNotes
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if intent.IsCreate() {
			if err := m.coord.CloseSurface(false); err != nil {
				m.modal = modalConfirmSaveClose
				return m, nil
			}
			m.view = viewNotes
			return m, nil
		}
		if err := m.coord.CancelEditing(false); err != nil {
			m.modal = modalConfirmSaveClose
			return m, nil
		}
		m.syncPageInputs()
		return m, nil
	case "ctrl+enter", "ctrl+s":
		if m.loading || m.coord.IsSaving(intent.NoteID) {
			return m, nil
		}
		m.loading = true
		m.coord.SetDraft(m.titleInput.Value(), m.contentArea.Value())
		return m, commitCmd(m.coord, false)
	case "tab":
		if m.titleInput.Focused() {
			m.titleInput.Blur()
			m.contentArea.Focus()
		} else {
			m.contentArea.Blur()
			m.titleInput.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.titleInput.Focused() {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.contentArea, cmd = m.contentArea.Update(msg)
	}
	m.coord.SetDraft(m.titleInput.Value(), m.contentArea.Value())
	return m, cmd
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalEditor:
		switch msg.String() {
		case "esc":
			if err := m.coord.CloseSurface(false); err != nil {
				m.modal = modalConfirmDiscard
				return m, nil
			}
			m.modal = modalNone
			return m, nil
		case "ctrl+enter", "ctrl+s":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.coord.SetDraft(m.titleInput.Value(), m.contentArea.Value())
			return m, commitCmd(m.coord, false)
		case "tab":
			if m.titleInput.Focused() {
				m.titleInput.Blur()
				m.contentArea.Focus()
			} else {
				m.contentArea.Blur()
				m.titleInput.Focus()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.titleInput.Focused() {
			m.titleInput, cmd = m.titleInput.Update(msg)
		} else {
			m.contentArea, cmd = m.contentArea.Update(msg)
		}
		m.coord.SetDraft(m.titleInput.Value(), m.contentArea.Value())
		return m, cmd

	case modalConfirmDiscard:
		switch msg.String() {
		case "y", "enter":
			_ = m.coord.CloseSurface(true)
			m.modal = modalNone
			if m.view == viewNotePage {
				m.view = viewNotes
			}
		case "n", "esc":
			m.modal = modalEditor
		}
		return m, nil

	case modalConfirmSaveClose:
		switch msg.String() {
		case "s", "enter":
			m.modal = modalNone
			m.loading = true
			m.coord.SetDraft(m.titleInput.Value(), m.contentArea.Value())
			return m, commitCmd(m.coord, true)
		case "d":
			m.modal = modalNone
			_ = m.coord.CloseSurface(true)
			m.view = viewNotes
		case "esc":
			m.modal = modalNone
		}
		return m, nil

	case modalConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			var target = m.deleteTarget()
			if target == nil {
				m.modal = modalNone
				return m, nil
			}
			m.loading = true
			return m, deleteCmd(m.coord, *target)
		case "n", "esc":
			m.modal = modalNone
		}
		return m, nil
	}
	return m, nil
}
