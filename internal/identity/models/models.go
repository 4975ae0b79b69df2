package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record. Verified flips exactly once, when the OTP
// verification succeeds; until then the user cannot log in.
type User struct {
	ID             uuid.UUID
	Email          string
	FirstName      string
	PhoneNumber    string // country code + digits, as submitted
	PasswordHash   string
	AvatarFilename string
	Verified       bool
	CreatedAt      time.Time
}

// PendingOTP bridges signup submission and verification. It lives in the
// OTP store under the user id with a TTL; Attempts is informational only,
// there is no lockout.
type PendingOTP struct {
	UserID    uuid.UUID
	Code      string
	Attempts  int
	ExpiresAt time.Time
}

// SignupRequest carries the multipart signup form fields.
type SignupRequest struct {
	Email       string
	Password    string
	FirstName   string
	CountryCode string
	PhoneNumber string // digits only, without country code
	// AvatarFilename is the uploaded file's name. Image bytes are handled
	// by external storage and never reach this service.
	AvatarFilename string
}
