package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dErrors "goggins/pkg/domain-errors"
)

// NewRouter wires all public endpoints. Handlers delegate to domain services
// without embedding business logic so transport concerns remain isolated.
func NewRouter(identity *IdentityHandler, notes *NotesHandler, validator TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		identity.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(validator, logger))
			identity.RegisterProtected(r)
			notes.Register(r)
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler emits the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, dErrors.ToHTTPStatus(dErrors.CodeOf(err)), map[string]string{
		"error": dErrors.MessageOf(err),
	})
}
