package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type GatewaySuite struct {
	suite.Suite
	ctx context.Context
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *GatewaySuite) newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func (s *GatewaySuite) TestStartSignup() {
	s.T().Run("posts multipart fields and returns the user id", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/auth/signup", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "runner@example.com", r.FormValue("email"))
			assert.Equal(t, "+1", r.FormValue("countryCode"))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"userId": "u-1"})
		})

		userID, err := c.StartSignup(s.ctx, SignupForm{
			Email:       "runner@example.com",
			Password:    "Str0ng!pass",
			FirstName:   "David",
			CountryCode: "+1",
			PhoneNumber: "2025550123",
		})

		require.NoError(t, err)
		assert.Equal(t, "u-1", userID)
	})

	s.T().Run("attaches the avatar when present", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			_, header, err := r.FormFile("avatar")
			require.NoError(t, err)
			assert.Equal(t, "me.png", header.Filename)
			_ = json.NewEncoder(w).Encode(map[string]string{"userId": "u-1"})
		})

		_, err := c.StartSignup(s.ctx, SignupForm{
			Email:          "runner@example.com",
			AvatarFilename: "me.png",
			Avatar:         []byte{1, 2, 3},
		})

		require.NoError(t, err)
	})

	s.T().Run("server rejection carries the message verbatim", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "email already registered"})
		})

		_, err := c.StartSignup(s.ctx, SignupForm{Email: "runner@example.com"})

		require.Error(t, err)
		assert.Equal(t, KindRemoteRejection, KindOf(err))
		assert.Equal(t, "email already registered", MessageOf(err))
	})

	s.T().Run("unreachable server becomes a transport failure", func(t *testing.T) {
		c, err := New("http://127.0.0.1:1")
		require.NoError(t, err)

		_, err = c.StartSignup(s.ctx, SignupForm{Email: "runner@example.com"})

		require.Error(t, err)
		assert.Equal(t, KindTransportFailure, KindOf(err))
		assert.Equal(t, "Something went wrong. Please try again.", MessageOf(err))
	})
}

func (s *GatewaySuite) TestErrorNormalization() {
	s.T().Run("unparseable error body falls back to the generic message", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<html>upstream broke</html>"))
		})

		_, err := c.VerifyOTP(s.ctx, "u-1", "424242")

		require.Error(t, err)
		assert.Equal(t, KindRemoteRejection, KindOf(err))
		assert.Equal(t, "Something went wrong. Please try again.", MessageOf(err))
	})

	s.T().Run("rejection under a message field is surfaced verbatim", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP has expired"})
		})

		_, err := c.VerifyOTP(s.ctx, "u-1", "424242")

		require.Error(t, err)
		assert.Equal(t, KindRemoteRejection, KindOf(err))
		assert.Equal(t, "OTP has expired", MessageOf(err))
	})

	s.T().Run("non-gateway errors report as transport failures", func(t *testing.T) {
		assert.Equal(t, KindTransportFailure, KindOf(context.Canceled))
		assert.Equal(t, "Something went wrong. Please try again.", MessageOf(context.Canceled))
	})
}

func (s *GatewaySuite) TestSessionToken() {
	s.T().Run("valid session reports the token", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "signed-token"})
		})

		tok, ok, err := c.SessionToken(s.ctx)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "signed-token", tok)
	})

	s.T().Run("401 means not authenticated, not an error", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"})
		})

		_, ok, err := c.SessionToken(s.ctx)

		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func (s *GatewaySuite) TestSessionCookieFlow() {
	s.T().Run("login cookie is replayed on later calls", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/auth/login":
				http.SetCookie(w, &http.Cookie{Name: "session", Value: "signed-token", Path: "/"})
				_ = json.NewEncoder(w).Encode(map[string]string{"name": "David"})
			case "/api/auth/notes":
				cookie, err := r.Cookie("session")
				require.NoError(t, err)
				assert.Equal(t, "signed-token", cookie.Value)
				_ = json.NewEncoder(w).Encode([]any{})
			default:
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
		})

		name, err := c.Login(s.ctx, "runner@example.com", "Str0ng!pass")
		require.NoError(t, err)
		assert.Equal(t, "David", name)

		notes, err := c.ListNotes(s.ctx)
		require.NoError(t, err)
		assert.Empty(t, notes)
	})
}

func (s *GatewaySuite) TestNotes() {
	s.T().Run("create returns the canonical record from its envelope", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Plan", req["title"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"note":{"_id":"8f9c2f1e-1111-4222-8333-444455556666","title":"Plan","content":"Ship v1","createdAt":"2024-01-01T00:00:00Z","is_deleted":false}}`))
		})

		note, err := c.CreateNote(s.ctx, "Plan", "Ship v1")

		require.NoError(t, err)
		assert.Equal(t, "Plan", note.Title)
		assert.Equal(t, "Ship v1", note.Content)
		assert.False(t, note.IsDeleted)
	})

	s.T().Run("soft delete sends the deletion patch", func(t *testing.T) {
		c := s.newClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPatch, r.Method)
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, true, req["is_deleted"])
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Note deleted"})
		})

		require.NoError(t, c.SoftDeleteNote(s.ctx, "n1"))
	})
}
