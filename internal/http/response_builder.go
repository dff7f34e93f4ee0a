package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTMXResponse accumulates client-side event triggers and applies them as
// an HX-Trigger header before the body is written.
type HTMXResponse struct {
	w        http.ResponseWriter
	status   int
	triggers map[string]any
	redirect string
}

func NewHTMXResponse(w http.ResponseWriter) *HTMXResponse {
	return &HTMXResponse{
		w:        w,
		status:   http.StatusOK,
		triggers: make(map[string]any),
	}
}

func (b *HTMXResponse) Status(code int) *HTMXResponse {
	b.status = code
	return b
}

// Trigger registers a bare client event.
func (b *HTMXResponse) Trigger(event string) *HTMXResponse {
	b.triggers[event] = struct{}{}
	return b
}

// Notify registers a show-notification event the frontend renders as a
// toast. Kind is one of success, warning, error.
func (b *HTMXResponse) Notify(kind, message string) *HTMXResponse {
	b.triggers["show-notification"] = map[string]string{
		"type":    kind,
		"message": message,
	}
	return b
}

// Redirect instructs HTMX to perform a full-page navigation.
func (b *HTMXResponse) Redirect(url string) *HTMXResponse {
	b.redirect = url
	return b
}

// Apply writes the trigger headers and status code. The caller writes the
// body afterwards.
func (b *HTMXResponse) Apply() http.ResponseWriter {
	if len(b.triggers) > 0 {
		payload, err := json.Marshal(b.triggers)
		if err != nil {
			slog.Error("Failed to encode HX-Trigger payload", "component", "http", "error", err)
		} else {
			b.w.Header().Set("HX-Trigger", string(payload))
		}
	}
	if b.redirect != "" {
		b.w.Header().Set("HX-Redirect", b.redirect)
	}
	b.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	b.w.WriteHeader(b.status)
	return b.w
}
