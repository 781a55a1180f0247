package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type status struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Store   string `json:"store,omitempty"`
}

// New builds a health check HTTP handler with liveness and readiness
// endpoints. store names the quote store backend readiness pings.
func New(log *slog.Logger, p Pinger, store string, opTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Liveness: process is up
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, status{Service: "superpool", Status: "ok"})
	})

	// Readiness: the quote store is reachable
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readiness failed", "store", store, "err", err)
			}
			writeStatus(w, http.StatusServiceUnavailable, status{Service: "superpool", Status: "not ready", Store: store})
			return
		}
		writeStatus(w, http.StatusOK, status{Service: "superpool", Status: "ready", Store: store})
	})

	return r
}

func writeStatus(w http.ResponseWriter, code int, s status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(s)
}
