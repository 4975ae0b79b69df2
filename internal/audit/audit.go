// Package audit captures account and note lifecycle events. Services emit
// them through a Publisher; sinks decide where they land (memory for tests
// and development, Kafka for production).
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    uuid.UUID
	Subject   string // entity the action applies to, e.g. a note id
	Action    string
	Reason    string
	Email     string // user email when available (signup flow)
	Attempt   int    // verification attempt number, informational only
}

type Action string

const (
	EventSignupStarted   Action = "user_signup_started"
	EventOTPResent       Action = "otp_resent"
	EventUserVerified    Action = "user_verified"
	EventVerifyRejected  Action = "otp_verify_rejected"
	EventUserLoggedIn    Action = "user_logged_in"
	EventUserLoggedOut   Action = "user_logged_out"
	EventNoteCreated     Action = "note_created"
	EventNoteUpdated     Action = "note_updated"
	EventNoteSoftDeleted Action = "note_soft_deleted"
)

// Sink receives published events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
