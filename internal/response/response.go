// Package response writes the JSON envelopes every endpoint returns:
// {"success":true,"data":...} or {"success":false,"detail":"..."}.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal JSON response", "error", err)
		http.Error(w, `{"success":false,"detail":"Internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		slog.Debug("write JSON response", "error", err)
	}
}

// Success writes a 200 envelope around data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Fail writes an error envelope with an explicit status and message.
func Fail(w http.ResponseWriter, code int, detail string) {
	JSON(w, code, envelope{Success: false, Detail: detail})
}

// Error maps err to its status through apperr. Internal errors are logged
// and their text is never sent.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	switch kind {
	case apperr.KindInternal:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	case apperr.KindUnavailable:
		slog.WarnContext(r.Context(), "store unavailable", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	Fail(w, kind.HTTPStatus(), apperr.PublicMessage(err))
}
