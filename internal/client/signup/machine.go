// Package signup drives the client half of the registration protocol: form
// validation, the one pending signup per session, and the 6-slot OTP entry
// sequence with its focus rules.
package signup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"goggins/internal/client/gateway"
	"goggins/pkg/password"
)

// State names the phases of the registration lifecycle. Verified is
// terminal; the only way back from AwaitingOTP to FormEntry is an explicit
// user cancel.
type State string

const (
	StateFormEntry   State = "form_entry"
	StateSubmitting  State = "submitting"
	StateAwaitingOTP State = "awaiting_otp"
	StateVerifying   State = "verifying"
	StateVerified    State = "verified"
)

const otpSlots = 6

// Gateway is the remote surface the machine mutates through.
type Gateway interface {
	StartSignup(ctx context.Context, form gateway.SignupForm) (string, error)
	VerifyOTP(ctx context.Context, userID, otp string) (string, error)
	ResendOTP(ctx context.Context, email, userID string) (string, error)
}

// Machine owns one pending signup at a time. Callers drive it from a single
// event loop; methods are not safe for concurrent use.
type Machine struct {
	gw     Gateway
	logger *slog.Logger

	state             State
	userID            string
	verificationEmail string
	otp               [otpSlots]string
	focus             int
	status            string
}

type Option func(*Machine)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

func New(gw Gateway, opts ...Option) *Machine {
	m := &Machine{gw: gw, state: StateFormEntry}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State              { return m.state }
func (m *Machine) UserID() string            { return m.userID }
func (m *Machine) VerificationEmail() string { return m.verificationEmail }
func (m *Machine) Status() string            { return m.status }

// OtpDigits returns a copy of the 6 entry slots.
func (m *Machine) OtpDigits() [otpSlots]string { return m.otp }

// Focus reports the slot index holding keyboard focus; otpSlots means focus
// moved past the last slot.
func (m *Machine) Focus() int { return m.focus }

// OtpValue joins the slots into the code as typed so far.
func (m *Machine) OtpValue() string {
	return strings.Join(m.otp[:], "")
}

// ValidateForm applies every local precondition for submission. It never
// touches the network.
func ValidateForm(form gateway.SignupForm) error {
	if form.Email == "" || form.Password == "" || form.FirstName == "" || form.PhoneNumber == "" {
		return gateway.Validation("All fields are required")
	}
	if password.Classify(form.Password) != password.TierStrong {
		return gateway.Validation("Please use a strong password for better security")
	}
	return ValidatePhone(form.CountryCode, form.PhoneNumber)
}

// ValidatePhone checks the number against the digit-length rule of the
// selected country.
func ValidatePhone(countryCode, number string) error {
	for _, r := range number {
		if r < '0' || r > '9' {
			return gateway.Validation("Phone number should contain only digits")
		}
	}
	c := CountryByCode(countryCode)
	if len(number) != c.Digits {
		return gateway.Validation(fmt.Sprintf("Phone number for %s should be exactly %d digits", c.Name, c.Digits))
	}
	return nil
}

// Submit posts the registration form. On success the machine holds the
// server-issued user id and waits for the emailed code; on any failure it
// returns to FormEntry with nothing pending.
func (m *Machine) Submit(ctx context.Context, form gateway.SignupForm) error {
	if m.state != StateFormEntry {
		return gateway.Validation("signup already in progress")
	}
	if err := ValidateForm(form); err != nil {
		return err
	}

	m.state = StateSubmitting
	userID, err := m.gw.StartSignup(ctx, form)
	if err != nil {
		m.state = StateFormEntry
		return err
	}

	m.state = StateAwaitingOTP
	m.userID = userID
	m.verificationEmail = form.Email
	m.otp = [otpSlots]string{}
	m.focus = 0
	m.status = ""
	if m.logger != nil {
		m.logger.Info("signup accepted, awaiting verification", "user_id", userID)
	}
	return nil
}

// EditOtpDigit writes one digit into a slot and advances focus while a next
// slot exists; on the last slot focus stays put. Non-digit input is ignored.
func (m *Machine) EditOtpDigit(index int, ch rune) {
	if index < 0 || index >= otpSlots || ch < '0' || ch > '9' {
		return
	}
	m.otp[index] = string(ch)
	if index < otpSlots-1 {
		m.focus = index + 1
	} else {
		m.focus = index
	}
}

// DeleteOtpDigit applies the two-phase backspace: a filled slot clears in
// place with focus unchanged; an empty slot clears the previous one and
// moves focus there. On the first slot the second phase is a no-op.
func (m *Machine) DeleteOtpDigit(index int) {
	if index < 0 || index >= otpSlots {
		return
	}
	if m.otp[index] != "" {
		m.otp[index] = ""
		m.focus = index
		return
	}
	if index > 0 {
		m.otp[index-1] = ""
		m.focus = index - 1
	}
}

// PasteOtp fills the slots left to right from pasted text. Anything other
// than pure digits is rejected wholesale; at most the first 6 digits are
// used and focus lands on the first slot still empty.
func (m *Machine) PasteOtp(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return
		}
	}

	for i, r := range text {
		if i >= otpSlots {
			break
		}
		m.otp[i] = string(r)
	}

	m.focus = otpSlots
	for i, slot := range m.otp {
		if slot == "" {
			m.focus = i
			break
		}
	}
}

// VerifyOtp submits the assembled code. Acceptance is terminal; rejection
// returns to AwaitingOTP with the slots intact so the user can correct in
// place.
func (m *Machine) VerifyOtp(ctx context.Context) error {
	if m.state != StateAwaitingOTP {
		return gateway.Validation("no verification in progress")
	}
	code := m.OtpValue()
	if len(code) != otpSlots {
		return gateway.Validation("Please enter all 6 digits of the OTP")
	}

	m.state = StateVerifying
	msg, err := m.gw.VerifyOTP(ctx, m.userID, code)
	if err != nil {
		m.state = StateAwaitingOTP
		return err
	}

	m.state = StateVerified
	m.status = msg
	m.userID = ""
	m.verificationEmail = ""
	return nil
}

// ResendOtp requests a fresh code for the pending signup. The slots keep
// their contents and the machine stays in AwaitingOTP either way.
func (m *Machine) ResendOtp(ctx context.Context) error {
	if m.state != StateAwaitingOTP {
		return gateway.Validation("no verification in progress")
	}

	msg, err := m.gw.ResendOTP(ctx, m.verificationEmail, m.userID)
	if err != nil {
		return err
	}
	m.status = msg
	return nil
}

// Cancel abandons the pending signup and returns to the form. The server
// record is left for the resend flow of a future signup with the same email.
func (m *Machine) Cancel() {
	if m.state != StateAwaitingOTP {
		return
	}
	m.state = StateFormEntry
	m.userID = ""
	m.verificationEmail = ""
	m.otp = [otpSlots]string{}
	m.focus = 0
	m.status = ""
}
