package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AnshRaj112/niknak-backend/internal/response"
)

// Root answers GET / so a browser hitting the API gets something back.
func Root(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"message": "Hello, World!"})
}

// Health returns a liveness handler. When ping is set, a failing ping
// turns the answer into a 503.
func Health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.WarnContext(r.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("UNAVAILABLE"))
				return
			}
		}
		_, _ = w.Write([]byte("OK"))
	}
}
