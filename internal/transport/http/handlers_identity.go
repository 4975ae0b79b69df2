package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"goggins/internal/identity/models"
	dErrors "goggins/pkg/domain-errors"
)

// maxAvatarBytes bounds the multipart form held in memory during signup.
const maxAvatarBytes = 5 << 20

type IdentityService interface {
	StartSignup(ctx context.Context, req models.SignupRequest) (uuid.UUID, error)
	VerifyOTP(ctx context.Context, userID uuid.UUID, code string) (string, error)
	ResendOTP(ctx context.Context, userID uuid.UUID) (string, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type NoteCounter interface {
	CountLive(ctx context.Context, ownerID uuid.UUID) (int, error)
}

type IdentityHandler struct {
	identity   IdentityService
	notes      NoteCounter
	sessionTTL time.Duration
}

func NewIdentityHandler(identity IdentityService, notes NoteCounter, sessionTTL time.Duration) *IdentityHandler {
	return &IdentityHandler{identity: identity, notes: notes, sessionTTL: sessionTTL}
}

func (h *IdentityHandler) Register(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Put("/auth/signup", h.handleVerify)
	r.Patch("/auth/signup", h.handleResend)
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/token", h.handleToken)
	r.Post("/auth/logout", h.handleLogout)
}

func (h *IdentityHandler) RegisterProtected(r chi.Router) {
	r.Get("/profile", h.handleProfile)
}

func (h *IdentityHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid signup form"))
		return
	}

	req := models.SignupRequest{
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		FirstName:   r.FormValue("firstName"),
		CountryCode: r.FormValue("countryCode"),
		PhoneNumber: r.FormValue("phoneNumber"),
	}
	if _, header, err := r.FormFile("avatar"); err == nil {
		req.AvatarFilename = header.Filename
	}

	if !govalidator.IsEmail(req.Email) {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid email"))
		return
	}

	userID, err := h.identity.StartSignup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"userId": userID.String()})
}

func (h *IdentityHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		OTP    string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}

	msg, err := h.identity.VerifyOTP(r.Context(), userID, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *IdentityHandler) handleResend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}

	msg, err := h.identity.ResendOTP(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *IdentityHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if !govalidator.IsEmail(req.Email) || req.Password == "" {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "email and password are required"))
		return
	}

	tok, u, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, tok, h.sessionTTL)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged in successfully",
		"name":    u.FirstName,
	})
}

// handleToken is the session probe: it reports the current token if the
// session cookie is still valid and 401s otherwise. Clients use it to skip
// the signup surface for already-authenticated users.
func (h *IdentityHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "not authenticated"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": cookie.Value})
}

func (h *IdentityHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -time.Hour)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// handleProfile composes account details with the live note count. The two
// lookups are independent so they run concurrently.
func (h *IdentityHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r.Context())

	var (
		u     *models.User
		count int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		u, err = h.identity.FindUser(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = h.notes.CountLive(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":         u.FirstName,
		"notesCreated": count,
	})
}

func (h *IdentityHandler) setSessionCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
