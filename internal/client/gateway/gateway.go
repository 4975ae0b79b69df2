// Package gateway is the client's single seam to the remote API. Each call
// performs one request and normalizes every failure into an Error with a
// kind and a user-facing message; no state is carried between calls beyond
// the session cookie jar.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"goggins/internal/notes/models"
)

// ErrorKind classifies gateway failures for the state machines consuming them.
type ErrorKind string

const (
	// KindValidation marks a local precondition failure; no request was made.
	KindValidation ErrorKind = "validation"
	// KindRemoteRejection marks a non-2xx response carrying a server message.
	KindRemoteRejection ErrorKind = "remote_rejection"
	// KindTransportFailure marks a network or decode failure with no usable
	// server message.
	KindTransportFailure ErrorKind = "transport_failure"
)

// genericFailure is shown when the server gave us nothing quotable.
const genericFailure = "Something went wrong. Please try again."

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation builds a local pre-network rejection.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf reports the kind of a gateway error, or KindTransportFailure for
// anything else.
func KindOf(err error) ErrorKind {
	if ge, ok := err.(*Error); ok {
		return ge.Kind
	}
	return KindTransportFailure
}

// MessageOf reports the user-facing message of a gateway error.
func MessageOf(err error) string {
	if ge, ok := err.(*Error); ok {
		return ge.Message
	}
	return genericFailure
}

// SignupForm carries the registration fields posted as multipart form data.
type SignupForm struct {
	Email          string
	Password       string
	FirstName      string
	CountryCode    string
	PhoneNumber    string
	AvatarFilename string
	Avatar         []byte
}

// Profile is the account summary shown on the dashboard.
type Profile struct {
	Name         string `json:"name"`
	NotesCreated int    `json:"notesCreated"`
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// StartSignup posts the registration form and returns the server-issued
// user id for the pending account.
func (c *Client) StartSignup(ctx context.Context, form SignupForm) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"email":       form.Email,
		"password":    form.Password,
		"firstName":   form.FirstName,
		"countryCode": form.CountryCode,
		"phoneNumber": form.PhoneNumber,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", c.transportErr("signup", err)
		}
	}
	if form.AvatarFilename != "" {
		fw, err := mw.CreateFormFile("avatar", form.AvatarFilename)
		if err != nil {
			return "", c.transportErr("signup", err)
		}
		if _, err := fw.Write(form.Avatar); err != nil {
			return "", c.transportErr("signup", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", c.transportErr("signup", err)
	}

	var resp struct {
		UserID string `json:"userId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", mw.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// VerifyOTP submits the 6-digit code for a pending signup.
func (c *Client) VerifyOTP(ctx context.Context, userID, otp string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.doJSON(ctx, http.MethodPut, "/api/auth/signup", map[string]string{
		"userId": userID,
		"otp":    otp,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResendOTP requests a fresh verification code for a pending signup.
func (c *Client) ResendOTP(ctx context.Context, email, userID string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.doJSON(ctx, http.MethodPatch, "/api/auth/signup", map[string]string{
		"email":  email,
		"userId": userID,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login exchanges credentials for a session cookie held in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		Name string `json:"name"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Name, nil
}

// SessionToken probes whether the jar still holds a live session. A false
// result with nil error means "not authenticated", not a failure.
func (c *Client) SessionToken(ctx context.Context) (string, bool, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/token", "", nil, &resp)
	if err != nil {
		if KindOf(err) == KindRemoteRejection {
			return "", false, nil
		}
		return "", false, err
	}
	return resp.Token, true, nil
}

// Logout drops the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", "", nil, nil)
}

// FetchProfile loads the dashboard account summary.
func (c *Client) FetchProfile(ctx context.Context) (Profile, error) {
	var resp Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", "", nil, &resp); err != nil {
		return Profile{}, err
	}
	return resp, nil
}

// ListNotes fetches the full server-ordered note collection, soft-deleted
// entries included.
func (c *Client) ListNotes(ctx context.Context) ([]models.Note, error) {
	var resp []models.Note
	if err := c.do(ctx, http.MethodGet, "/api/auth/notes", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateNote persists a new note and returns the canonical server record.
func (c *Client) CreateNote(ctx context.Context, title, content string) (models.Note, error) {
	var resp struct {
		Note models.Note `json:"note"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/notes", map[string]string{
		"title":   title,
		"content": content,
	}, &resp)
	if err != nil {
		return models.Note{}, err
	}
	return resp.Note, nil
}

// UpdateNote replaces a note's title and content on the server.
func (c *Client) UpdateNote(ctx context.Context, noteID, title, content string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/auth/notes", map[string]string{
		"noteId":  noteID,
		"title":   title,
		"content": content,
	}, nil)
}

// SoftDeleteNote marks a note deleted on the server.
func (c *Client) SoftDeleteNote(ctx context.Context, noteID string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/auth/notes", map[string]any{
		"noteId":     noteID,
		"is_deleted": true,
	}, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return c.transportErr(path, err)
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return c.transportErr(path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return c.transportErr(path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportErr(path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportErr(path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindRemoteRejection, Message: remoteMessage(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return c.transportErr(path, err)
		}
	}
	return nil
}

// remoteMessage extracts the server's message so it can be surfaced
// verbatim. Rejections carry it in the "error" field, with "message" as a
// fallback for endpoints that reject through the success envelope; an
// unparseable body falls back to the generic message.
func remoteMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return genericFailure
}

func (c *Client) transportErr(path string, err error) *Error {
	if c.logger != nil {
		c.logger.Warn("request failed", "path", path, "error", err)
	}
	return &Error{Kind: KindTransportFailure, Message: genericFailure}
}
