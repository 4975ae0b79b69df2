// Package tui is the terminal front end. It renders the signup machine and
// the note coordinator and translates keystrokes into their operations; all
// protocol rules live in those packages, not here.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"goggins/internal/client/gateway"
	"goggins/internal/client/notes"
	"goggins/internal/client/signup"
)

type view int

const (
	viewLogin view = iota
	viewSignupForm
	viewOtp
	viewNotes
	viewNotePage
)

type modal int

const (
	modalNone modal = iota
	modalEditor
	modalConfirmDiscard
	modalConfirmDelete
	modalConfirmSaveClose
)

// signupField indexes the focusable registration inputs.
type signupField int

const (
	fieldFirstName signupField = iota
	fieldEmail
	fieldPassword
	fieldCountry
	fieldPhone
	signupFieldCount
)

type appModel struct {
	gw     *gateway.Client
	signup *signup.Machine
	coord  *notes.Coordinator
	logger *slog.Logger

	width  int
	height int

	view  view
	modal modal

	loginEmail    textinput.Model
	loginPassword textinput.Model
	loginFocus    int

	formInputs [signupFieldCount]textinput.Model
	formFocus  signupField
	countryIdx int

	searchInput textinput.Model
	searching   bool
	noteIdx     int

	titleInput  textinput.Model
	contentArea textarea.Model

	profile     gateway.Profile
	userName    string
	status      string
	errMsg      string
	loading     bool
}

// New builds the application model around an authenticated gateway client.
func New(gw *gateway.Client, logger *slog.Logger) appModel {
	m := appModel{
		gw:     gw,
		signup: signup.New(gw, signup.WithLogger(logger)),
		coord:  notes.New(gw, notes.WithLogger(logger)),
		logger: logger,
		view:   viewLogin,
	}

	m.loginEmail = textinput.New()
	m.loginEmail.Placeholder = "email"
	m.loginEmail.Focus()
	m.loginPassword = textinput.New()
	m.loginPassword.Placeholder = "password"
	m.loginPassword.EchoMode = textinput.EchoPassword

	placeholders := [signupFieldCount]string{"first name", "email", "password", "", "phone number"}
	for i := range m.formInputs {
		m.formInputs[i] = textinput.New()
		m.formInputs[i].Placeholder = placeholders[i]
	}
	m.formInputs[fieldPassword].EchoMode = textinput.EchoPassword
	m.formInputs[fieldFirstName].Focus()
	for i, c := range signup.Countries() {
		if c.Code == signup.DefaultCountryCode {
			m.countryIdx = i
			break
		}
	}

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "search notes"

	m.titleInput = textinput.New()
	m.titleInput.Placeholder = "title"
	m.contentArea = textarea.New()
	m.contentArea.Placeholder = "content"

	return m
}

func (m appModel) Init() tea.Cmd {
	return probeSessionCmd(m.gw)
}

// Run starts the program on the alternate screen.
func Run(gw *gateway.Client, logger *slog.Logger) error {
	p := tea.NewProgram(New(gw, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Messages carrying the results of gateway round trips back onto the event
// loop.

type sessionProbeMsg struct {
	authenticated bool
	err           error
}

type loginDoneMsg struct {
	name string
	err  error
}

type logoutDoneMsg struct{ err error }

type signupSubmitMsg struct{ err error }

type verifyDoneMsg struct{ err error }

type resendDoneMsg struct{ err error }

type notesLoadedMsg struct{ err error }

type profileMsg struct {
	profile gateway.Profile
	err     error
}

type saveDoneMsg struct {
	err        error
	closeAfter bool
}

type deleteDoneMsg struct{ err error }

func probeSessionCmd(gw *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		_, ok, err := gw.SessionToken(context.Background())
		return sessionProbeMsg{authenticated: ok, err: err}
	}
}

func loginCmd(gw *gateway.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		name, err := gw.Login(context.Background(), email, password)
		return loginDoneMsg{name: name, err: err}
	}
}

func logoutCmd(gw *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: gw.Logout(context.Background())}
	}
}

func submitSignupCmd(machine *signup.Machine, form gateway.SignupForm) tea.Cmd {
	return func() tea.Msg {
		return signupSubmitMsg{err: machine.Submit(context.Background(), form)}
	}
}

func verifyOtpCmd(machine *signup.Machine) tea.Cmd {
	return func() tea.Msg {
		return verifyDoneMsg{err: machine.VerifyOtp(context.Background())}
	}
}

func resendOtpCmd(machine *signup.Machine) tea.Cmd {
	return func() tea.Msg {
		return resendDoneMsg{err: machine.ResendOtp(context.Background())}
	}
}

func loadNotesCmd(coord *notes.Coordinator) tea.Cmd {
	return func() tea.Msg {
		return notesLoadedMsg{err: coord.Load(context.Background())}
	}
}

func fetchProfileCmd(gw *gateway.Client) tea.Cmd {
	return func() tea.Msg {
		p, err := gw.FetchProfile(context.Background())
		return profileMsg{profile: p, err: err}
	}
}

func commitCmd(coord *notes.Coordinator, closeAfter bool) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{err: coord.Commit(context.Background()), closeAfter: closeAfter}
	}
}

func deleteCmd(coord *notes.Coordinator, noteID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		return deleteDoneMsg{err: coord.SoftDelete(context.Background(), noteID)}
	}
}
