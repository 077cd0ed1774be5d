// Package health exposes the liveness endpoint backed by a store probe.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger probes the durable store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the health router. GET /health answers 200 while the
// store responds to a trivial probe, 503 otherwise.
func NewRouter(store Pinger, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := store.Ping(ctx); err != nil {
			logger.Warn("Health probe failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	})

	return r
}
