package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ClientIP installs chi's RealIP only when the server sits behind a proxy
// that overwrites X-Forwarded-For / X-Real-IP. Otherwise those headers are
// client-controlled and RemoteAddr is left untouched, so rate limit keys
// cannot be chosen by the caller.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	if trustProxy {
		return chimw.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}
