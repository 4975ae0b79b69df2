package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	styleErr   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62"))

	styleOtpSlot = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
	styleOtpFocused = styleOtpSlot.
			BorderForeground(lipgloss.Color("205"))

	styleModalBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

func (m appModel) View() string {
	var body string
	switch {
	case m.modal == modalEditor:
		body = m.viewEditorModal()
	case m.modal == modalConfirmDiscard:
		body = m.viewConfirm("Discard changes?", "y: discard   n: keep editing")
	case m.modal == modalConfirmSaveClose:
		body = m.viewConfirm("You have unsaved changes", "s: save and close   d: discard   esc: keep editing")
	case m.modal == modalConfirmDelete:
		body = m.viewConfirm("Delete this note?", "y: delete   n: cancel")
	default:
		switch m.view {
		case viewLogin:
			body = m.viewLogin()
		case viewSignupForm:
			body = m.viewSignupForm()
		case viewOtp:
			body = m.viewOtp()
		case viewNotes:
			body = m.viewNotesList()
		case viewNotePage:
			body = m.viewNotePage()
		}
	}

	var footer []string
	if m.errMsg != "" {
		footer = append(footer, styleErr.Render(m.errMsg))
	}
	if m.status != "" {
		footer = append(footer, styleOK.Render(m.status))
	}
	if m.loading {
		footer = append(footer, styleMuted.Render("working..."))
	}
	if len(footer) == 0 {
		return body
	}
	return body + "\n\n" + strings.Join(footer, "\n")
}

func (m appModel) viewLogin() string {
	lines := []string{
		styleTitle.Render("Goggins"),
		"",
		"  " + m.loginEmail.View(),
		"  " + m.loginPassword.View(),
		"",
		styleMuted.Render("enter: log in   ctrl+s: sign up   ctrl+c: quit"),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewSignupForm() string {
	labels := [signupFieldCount]string{"First name", "Email", "Password", "Country", "Phone"}
	var lines []string
	lines = append(lines, styleTitle.Render("Create your account"), "")
	for i := range m.formInputs {
		f := signupField(i)
		label := labels[i]
		if f == fieldCountry {
			c := m.country()
			row := fmt.Sprintf("%-11s %s %s", label, c.Code, styleMuted.Render(c.Name))
			if m.formFocus == fieldCountry {
				row += styleMuted.Render("  (left/right to change)")
			}
			lines = append(lines, "  "+row)
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-11s %s", label, m.formInputs[i].View()))
		if f == fieldPhone {
			lines = append(lines, "  "+styleMuted.Render(fmt.Sprintf("%d/%d digits", len(m.formInputs[fieldPhone].Value()), m.country().Digits)))
		}
	}
	lines = append(lines, "", styleMuted.Render("tab: next field   enter: submit   esc: back to login"))
	return strings.Join(lines, "\n")
}

func (m appModel) viewOtp() string {
	digits := m.signup.OtpDigits()
	focus := otpCursor(m.signup.Focus())

	slots := make([]string, len(digits))
	for i, d := range digits {
		if d == "" {
			d = " "
		}
		if i == focus {
			slots[i] = styleOtpFocused.Render(d)
		} else {
			slots[i] = styleOtpSlot.Render(d)
		}
	}

	lines := []string{
		styleTitle.Render("Verify your email"),
		"",
		styleMuted.Render("We've sent a verification code to " + m.signup.VerificationEmail()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, slots...),
		"",
		styleMuted.Render("type or paste the code   enter: verify   ctrl+r: resend   esc: back to sign up"),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewNotesList() string {
	var lines []string
	header := styleTitle.Render("Notes")
	if m.userName != "" {
		header += styleMuted.Render(fmt.Sprintf("   %s, %d notes", m.userName, m.profile.NotesCreated))
	}
	lines = append(lines, header, "")

	if m.searching || m.searchInput.Value() != "" {
		lines = append(lines, "  "+m.searchInput.View(), "")
	}

	visible := m.coord.VisibleNotes()
	if len(visible) == 0 {
		lines = append(lines, styleMuted.Render("  no notes yet"))
	}
	for i, n := range visible {
		title := n.Title
		preview := n.Content
		if len(preview) > 40 {
			preview = preview[:40] + "…"
		}
		row := fmt.Sprintf("%s  %s", title, styleMuted.Render(preview))
		if i == m.noteIdx {
			row = styleSelected.Render("▸ " + title + "  " + preview)
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}

	lines = append(lines, "", styleMuted.Render("enter: open   e: quick edit   n: new (modal)   c: new (page)   d: delete   /: search   r: reload   ctrl+l: log out"))
	return strings.Join(lines, "\n")
}

func (m appModel) viewNotePage() string {
	intent := m.coord.CurrentEditIntent()
	if intent == nil {
		return ""
	}

	var lines []string
	switch {
	case intent.IsCreate():
		lines = append(lines, styleTitle.Render("New note"))
	case intent.Editing:
		lines = append(lines, styleTitle.Render("Editing: "+intent.Title))
	default:
		lines = append(lines, styleTitle.Render(intent.Title))
	}
	lines = append(lines, "")

	if intent.Editing {
		lines = append(lines,
			"  "+m.titleInput.View(),
			"",
			m.contentArea.View(),
			"",
		)
		if intent.IsCreate() {
			lines = append(lines, styleMuted.Render("ctrl+enter: create   tab: switch field   esc: close"))
		} else {
			lines = append(lines, styleMuted.Render("ctrl+enter: save   tab: switch field   esc: cancel edit"))
		}
	} else {
		lines = append(lines, intent.Content, "")
		lines = append(lines, styleMuted.Render("e: edit   d: delete   esc: close"))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewEditorModal() string {
	intent := m.coord.CurrentEditIntent()
	title := "Edit note"
	if intent == nil || intent.IsCreate() {
		title = "New note"
	}
	content := strings.Join([]string{
		styleTitle.Render(title),
		"",
		m.titleInput.View(),
		"",
		m.contentArea.View(),
		"",
		styleMuted.Render("ctrl+enter: save   tab: switch field   esc: close"),
	}, "\n")
	return styleModalBox.Render(content)
}

func (m appModel) viewConfirm(question, help string) string {
	content := strings.Join([]string{
		styleTitle.Render(question),
		"",
		styleMuted.Render(help),
	}, "\n")
	return styleModalBox.Render(content)
}
