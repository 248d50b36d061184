package health

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/goccy/go-json"
)

// Health represents the health check response structure.
type Health struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Error  string `json:"error,omitempty"`
}

// Pinger runs a trivial round trip against storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check returns an HTTP handler that verifies storage connectivity.
// It responds 200 {"status":"ok","db":"connected"} when the round trip
// succeeds and 503 with the connection error otherwise.
func Check(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "Database ping failed", slog.Any("error", err))
			writeHealth(w, Health{Status: "error", DB: "disconnected", Error: err.Error()}, http.StatusServiceUnavailable)
			return
		}

		writeHealth(w, Health{Status: "ok", DB: "connected"}, http.StatusOK)
	}
}

// writeHealth writes the health check response to the HTTP response writer.
func writeHealth(w http.ResponseWriter, health Health, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", slog.Any("error", err))
	}
}
