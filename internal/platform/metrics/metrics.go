package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SignupsStarted   prometheus.Counter
	AccountsVerified prometheus.Counter
	OTPResends       prometheus.Counter
	NotesCreated     prometheus.Counter
	NotesSoftDeleted prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SignupsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goggins_signups_started_total",
			Help: "Total number of signup submissions accepted",
		}),
		AccountsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goggins_accounts_verified_total",
			Help: "Total number of accounts that completed email verification",
		}),
		OTPResends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goggins_otp_resends_total",
			Help: "Total number of verification code resends",
		}),
		NotesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goggins_notes_created_total",
			Help: "Total number of notes created",
		}),
		NotesSoftDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "goggins_notes_soft_deleted_total",
			Help: "Total number of notes soft-deleted",
		}),
	}
}
