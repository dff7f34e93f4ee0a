package http

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"relocationos/internal/core"
)

const maxInputLength = 1000

// sanitizeInput trims a form value and strips control characters except
// tab, CR and LF. Oversized values are truncated rather than rejected.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxInputLength {
		s = s[:maxInputLength]
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		if r == 127 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func parseFormInt64(r *http.Request, field string) (int64, error) {
	v, err := strconv.ParseInt(sanitizeInput(r.FormValue(field)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", field)
	}
	return v, nil
}

func parseFormInt(r *http.Request, field string, fallback int) (int, error) {
	raw := sanitizeInput(r.FormValue(field))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", field)
	}
	return v, nil
}

// parseCents converts a decimal amount string to integer cents. Decimals
// beyond two places are rejected rather than silently rounded.
func parseCents(raw string) (int64, error) {
	raw = sanitizeInput(raw)
	if raw == "" {
		return 0, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount cannot be negative")
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", raw)
	}
	return d.Shift(2).IntPart(), nil
}

// parseOptionalDate parses a YYYY-MM-DD form value, nil when blank.
func parseOptionalDate(raw string) (*core.Date, error) {
	raw = sanitizeInput(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseCheckbox interprets the usual HTML checkbox encodings.
func parseCheckbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// errorFragment writes a small HTML error block HTMX can swap in place.
func errorFragment(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="error">%s</div>`, html.EscapeString(message))
}
