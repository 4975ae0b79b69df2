package httptransport

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	identitymodels "goggins/internal/identity/models"
	"goggins/internal/transport/http/mocks"
	dErrors "goggins/pkg/domain-errors"
	"goggins/pkg/testutil"
)

//go:generate mockgen -source=handlers_identity.go -destination=mocks/service-mocks.go -package=mocks

type IdentityHandlerSuite struct {
	suite.Suite
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) newHandler(t *testing.T) (*mocks.MockIdentityService, *mocks.MockNoteCounter, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockIdentity := mocks.NewMockIdentityService(ctrl)
	mockCounter := mocks.NewMockNoteCounter(ctrl)
	handler := NewIdentityHandler(mockIdentity, mockCounter, 24*time.Hour)
	r := chi.NewRouter()
	handler.Register(r)
	return mockIdentity, mockCounter, r
}

func signupForm(t *testing.T, fields map[string]string, avatarName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if avatarName != "" {
		fw, err := mw.CreateFormFile("avatar", avatarName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *IdentityHandlerSuite) TestHandler_Signup() {
	validFields := map[string]string{
		"email":       "runner@example.com",
		"password":    "Str0ng!pass",
		"firstName":   "David",
		"countryCode": "+1",
		"phoneNumber": "2025550123",
	}

	s.T().Run("valid signup returns the new user id - 201", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		userID := uuid.New()
		mockIdentity.EXPECT().StartSignup(gomock.Any(), identitymodels.SignupRequest{
			Email:          "runner@example.com",
			Password:       "Str0ng!pass",
			FirstName:      "David",
			CountryCode:    "+1",
			PhoneNumber:    "2025550123",
			AvatarFilename: "me.png",
		}).Return(userID, nil)

		body, contentType := signupForm(t, validFields, "me.png")
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
		req.Header.Set("Content-Type", contentType)
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "userId", userID.String())
	})

	s.T().Run("avatar is optional", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().StartSignup(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req identitymodels.SignupRequest) (uuid.UUID, error) {
				assert.Empty(t, req.AvatarFilename)
				return uuid.New(), nil
			})

		body, contentType := signupForm(t, validFields, "")
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
		req.Header.Set("Content-Type", contentType)
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
	})

	s.T().Run("rejects malformed email before reaching the service - 400", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().StartSignup(gomock.Any(), gomock.Any()).Times(0)

		fields := map[string]string{}
		for k, v := range validFields {
			fields[k] = v
		}
		fields["email"] = "not-an-email"
		body, contentType := signupForm(t, fields, "")
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
		req.Header.Set("Content-Type", contentType)
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorMessage(t, rr, "invalid email")
	})

	s.T().Run("rejects non-multipart body - 400", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().StartSignup(gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/auth/signup", `{"email":"x"}`)
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	s.T().Run("propagates a duplicate email conflict - 409", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().StartSignup(gomock.Any(), gomock.Any()).
			Return(uuid.Nil, dErrors.New(dErrors.CodeConflict, "email already registered"))

		body, contentType := signupForm(t, validFields, "")
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", body)
		req.Header.Set("Content-Type", contentType)
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertErrorMessage(t, rr, "email already registered")
	})
}

func (s *IdentityHandlerSuite) TestHandler_Verify() {
	userID := uuid.New()

	s.T().Run("correct code verifies the account - 200", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().VerifyOTP(gomock.Any(), userID, "424242").
			Return("Email verified successfully!", nil)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/auth/signup", map[string]string{
			"userId": userID.String(),
			"otp":    "424242",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "message", "Email verified successfully!")
	})

	s.T().Run("wrong code is rejected - 400", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().VerifyOTP(gomock.Any(), userID, "000000").
			Return("", dErrors.New(dErrors.CodeInvalidInput, "invalid verification code"))

		req := testutil.NewJSONRequest(t, http.MethodPut, "/auth/signup", map[string]string{
			"userId": userID.String(),
			"otp":    "000000",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorMessage(t, rr, "invalid verification code")
	})

	s.T().Run("malformed user id never reaches the service - 400", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().VerifyOTP(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/auth/signup", map[string]string{
			"userId": "not-a-uuid",
			"otp":    "424242",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	s.T().Run("bad json body - 400", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().VerifyOTP(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewRequestWithBody(t, http.MethodPut, "/auth/signup", "{bad-json")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func (s *IdentityHandlerSuite) TestHandler_Resend() {
	userID := uuid.New()

	s.T().Run("resend issues a fresh code - 200", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().ResendOTP(gomock.Any(), userID).
			Return("A new verification code has been sent to your email", nil)

		req := testutil.NewJSONRequest(t, http.MethodPatch, "/auth/signup", map[string]string{
			"email":  "runner@example.com",
			"userId": userID.String(),
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONHasKey(t, rr, "message")
	})

	s.T().Run("resend for a verified account - 409", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().ResendOTP(gomock.Any(), userID).
			Return("", dErrors.New(dErrors.CodeConflict, "email already verified"))

		req := testutil.NewJSONRequest(t, http.MethodPatch, "/auth/signup", map[string]string{
			"userId": userID.String(),
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusConflict)
	})
}

func (s *IdentityHandlerSuite) TestHandler_Login() {
	s.T().Run("valid credentials set the session cookie - 200", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		u := &identitymodels.User{ID: uuid.New(), Email: "runner@example.com", FirstName: "David", Verified: true}
		mockIdentity.EXPECT().Login(gomock.Any(), "runner@example.com", "Str0ng!pass").
			Return("signed-token", u, nil)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "runner@example.com",
			"password": "Str0ng!pass",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "name", "David")

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookie, cookies[0].Name)
		assert.Equal(t, "signed-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	s.T().Run("wrong password - 401, no cookie", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().Login(gomock.Any(), "runner@example.com", "nope").
			Return("", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "runner@example.com",
			"password": "nope",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		assert.Empty(t, rr.Result().Cookies())
	})

	s.T().Run("unverified account - 403", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", nil, dErrors.New(dErrors.CodeForbidden, "email not verified"))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "runner@example.com",
			"password": "Str0ng!pass",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	s.T().Run("missing fields - 400", func(t *testing.T) {
		mockIdentity, _, router := s.newHandler(t)
		mockIdentity.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email": "runner@example.com",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func (s *IdentityHandlerSuite) TestHandler_TokenProbe() {
	s.T().Run("valid cookie reports the token - 200", func(t *testing.T) {
		_, _, router := s.newHandler(t)

		req := testutil.NewRequest(t, http.MethodGet, "/auth/token")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "signed-token"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "token", "signed-token")
	})

	s.T().Run("missing cookie - 401", func(t *testing.T) {
		_, _, router := s.newHandler(t)

		req := testutil.NewRequest(t, http.MethodGet, "/auth/token")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func (s *IdentityHandlerSuite) TestHandler_Logout() {
	s.T().Run("logout expires the session cookie", func(t *testing.T) {
		_, _, router := s.newHandler(t)

		req := testutil.NewRequest(t, http.MethodPost, "/auth/logout")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "signed-token"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, SessionCookie, cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)
	})
}

func (s *IdentityHandlerSuite) TestHandler_Profile() {
	userID := uuid.New()

	protectedRouter := func(t *testing.T) (*mocks.MockIdentityService, *mocks.MockNoteCounter, *chi.Mux) {
		t.Helper()
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)

		mockIdentity := mocks.NewMockIdentityService(ctrl)
		mockCounter := mocks.NewMockNoteCounter(ctrl)
		mockValidator := mocks.NewMockTokenValidator(ctrl)
		mockValidator.EXPECT().UserID("signed-token").Return(userID, nil).AnyTimes()

		handler := NewIdentityHandler(mockIdentity, mockCounter, 24*time.Hour)
		r := chi.NewRouter()
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(mockValidator, nil))
			handler.RegisterProtected(r)
		})
		return mockIdentity, mockCounter, r
	}

	s.T().Run("profile combines name and live note count", func(t *testing.T) {
		mockIdentity, mockCounter, router := protectedRouter(t)
		mockIdentity.EXPECT().FindUser(gomock.Any(), userID).
			Return(&identitymodels.User{ID: userID, FirstName: "David"}, nil)
		mockCounter.EXPECT().CountLive(gomock.Any(), userID).Return(3, nil)

		req := testutil.NewRequest(t, http.MethodGet, "/profile")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "signed-token"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "name", "David")
		testutil.AssertJSONContains(t, rr, "notesCreated", float64(3))
	})

	s.T().Run("profile without a session - 401", func(t *testing.T) {
		mockIdentity, _, router := protectedRouter(t)
		mockIdentity.EXPECT().FindUser(gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewRequest(t, http.MethodGet, "/profile")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	s.T().Run("count failure surfaces as internal error - 500", func(t *testing.T) {
		mockIdentity, mockCounter, router := protectedRouter(t)
		mockIdentity.EXPECT().FindUser(gomock.Any(), userID).
			Return(&identitymodels.User{ID: userID, FirstName: "David"}, nil).AnyTimes()
		mockCounter.EXPECT().CountLive(gomock.Any(), userID).Return(0, errors.New("boom"))

		req := testutil.NewRequest(t, http.MethodGet, "/profile")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "signed-token"})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	})
}
