// Package logger configures the process-wide slog logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDHandler adds chi's request id to every record logged with a
// request context.
type RequestIDHandler struct {
	next slog.Handler
}

func NewRequestIDHandler(next slog.Handler) *RequestIDHandler {
	return &RequestIDHandler{next: next}
}

func (h *RequestIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RequestIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := middleware.GetReqID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.next.Handle(ctx, r)
}

func (h *RequestIDHandler) WithGroup(name string) slog.Handler {
	return NewRequestIDHandler(h.next.WithGroup(name))
}

func (h *RequestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewRequestIDHandler(h.next.WithAttrs(attrs))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing JSON in production and text otherwise.
func New(w io.Writer, serviceName, level string, production bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var base slog.Handler
	if production {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRequestIDHandler(base)).With(slog.String("service", serviceName))
}

// Setup installs the logger as the slog default.
func Setup(serviceName, level string, production bool) *slog.Logger {
	logger := New(os.Stdout, serviceName, level, production)
	slog.SetDefault(logger)
	return logger
}
