// Package service owns the server half of the signup protocol: account
// creation, OTP issue/verify/resend, and session issuance. Transport and
// storage concerns live in other layers.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"goggins/internal/audit"
	"goggins/internal/identity/models"
	"goggins/internal/platform/metrics"
	"goggins/internal/token"
	dErrors "goggins/pkg/domain-errors"
	"goggins/pkg/password"
	"goggins/pkg/sentinel"
)

type UserStore interface {
	Save(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OTPStore interface {
	Save(ctx context.Context, p *models.PendingOTP) error
	Find(ctx context.Context, userID uuid.UUID) (*models.PendingOTP, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users  UserStore
	otps   OTPStore
	tokens *token.Service

	otpTTL     time.Duration
	sessionTTL time.Duration

	logger       *slog.Logger
	auditor      AuditPublisher
	metrics      *metrics.Metrics
	generateCode func() (string, error)
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

// WithCodeGenerator overrides OTP generation; tests use it to fix the code.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.generateCode = fn }
}

func New(users UserStore, otps OTPStore, tokens *token.Service, otpTTL, sessionTTL time.Duration, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if otps == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}

	svc := &Service{
		users:        users,
		otps:         otps,
		tokens:       tokens,
		otpTTL:       otpTTL,
		sessionTTL:   sessionTTL,
		generateCode: randomCode,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// StartSignup validates the submitted form, creates an unverified account
// and issues its OTP. Submitting again with the same unverified email
// reissues the pending record under the original user id, so an abandoned
// verification never strands the address.
func (s *Service) StartSignup(ctx context.Context, req models.SignupRequest) (uuid.UUID, error) {
	if err := validateSignup(req); err != nil {
		return uuid.Nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	u := &models.User{
		ID:             uuid.New(),
		Email:          req.Email,
		FirstName:      req.FirstName,
		PhoneNumber:    req.CountryCode + req.PhoneNumber,
		PasswordHash:   hash,
		AvatarFilename: req.AvatarFilename,
		CreatedAt:      time.Now(),
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.Verified:
		return uuid.Nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	case err == nil:
		// Unverified re-signup keeps the original id and created_at.
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
	case !errors.Is(err, sentinel.ErrNotFound):
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing account")
	}

	if err := s.users.Save(ctx, u); err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	if err := s.issueOTP(ctx, u.ID); err != nil {
		return uuid.Nil, err
	}

	if s.metrics != nil {
		s.metrics.SignupsStarted.Inc()
	}
	s.emit(ctx, audit.Event{
		UserID: u.ID,
		Email:  u.Email,
		Action: string(audit.EventSignupStarted),
	})
	return u.ID, nil
}

// VerifyOTP checks the submitted code. Success is terminal: the account is
// marked verified and the pending record destroyed, so a second verify for
// the same user is rejected.
func (s *Service) VerifyOTP(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if u.Verified {
		return "", dErrors.New(dErrors.CodeConflict, "email already verified")
	}

	pending, err := s.otps.Find(ctx, userID)
	switch {
	case errors.Is(err, sentinel.ErrExpired):
		return "", dErrors.New(dErrors.CodeBadRequest, "verification code expired, please request a new one")
	case errors.Is(err, sentinel.ErrNotFound):
		return "", dErrors.New(dErrors.CodeBadRequest, "no pending verification for this account")
	case err != nil:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification code")
	}

	if pending.Code != code {
		pending.Attempts++
		if err := s.otps.Save(ctx, pending); err != nil && s.logger != nil {
			s.logger.Warn("failed to record otp attempt", "user_id", userID, "error", err)
		}
		s.emit(ctx, audit.Event{
			UserID:  userID,
			Action:  string(audit.EventVerifyRejected),
			Attempt: pending.Attempts,
		})
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid verification code")
	}

	u.Verified = true
	if err := s.users.Save(ctx, u); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate account")
	}
	if err := s.otps.Delete(ctx, userID); err != nil && s.logger != nil {
		s.logger.Warn("failed to delete pending otp", "user_id", userID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.AccountsVerified.Inc()
	}
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Email:   u.Email,
		Action:  string(audit.EventUserVerified),
		Attempt: pending.Attempts + 1,
	})
	return "Email verified successfully!", nil
}

// ResendOTP regenerates the code for a still-unverified account and resets
// its TTL. There is no cooldown; retries are always user-initiated.
func (s *Service) ResendOTP(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if u.Verified {
		return "", dErrors.New(dErrors.CodeConflict, "email already verified")
	}

	if err := s.issueOTP(ctx, userID); err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.OTPResends.Inc()
	}
	s.emit(ctx, audit.Event{
		UserID: userID,
		Email:  u.Email,
		Action: string(audit.EventOTPResent),
	})
	return "A new verification code has been sent to your email", nil
}

// Login authenticates a verified account and returns a session token.
func (s *Service) Login(ctx context.Context, email, pw string) (string, *models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if !password.Verify(u.PasswordHash, pw) {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if !u.Verified {
		return "", nil, dErrors.New(dErrors.CodeForbidden, "email not verified")
	}

	tok, err := s.tokens.Generate(u.ID, u.Email, s.sessionTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}

	s.emit(ctx, audit.Event{UserID: u.ID, Email: u.Email, Action: string(audit.EventUserLoggedIn)})
	return tok, u, nil
}

// FindUser loads an account for profile rendering.
func (s *Service) FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return u, nil
}

func (s *Service) issueOTP(ctx context.Context, userID uuid.UUID) error {
	code, err := s.generateCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}
	p := &models.PendingOTP{
		UserID:    userID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpTTL),
	}
	if err := s.otps.Save(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification code")
	}
	if s.logger != nil {
		// OTP delivery (email) is an external collaborator; log issuance only.
		s.logger.Info("verification code issued", "user_id", userID)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}

func validateSignup(req models.SignupRequest) error {
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "all fields are required")
	}
	if password.Classify(req.Password) != password.TierStrong {
		return dErrors.New(dErrors.CodeInvalidInput, "please use a strong password for better security")
	}
	for _, r := range req.PhoneNumber {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeInvalidInput, "phone number should contain only digits")
		}
	}
	return nil
}

func randomCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
