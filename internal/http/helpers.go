package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitacora/internal/core"
)

// parseCriteria extracts the filter criteria from query parameters.
func parseCriteria(r *http.Request) core.Criteria {
	q := r.URL.Query()
	return core.Criteria{
		Date:     strings.TrimSpace(q.Get("fecha")),
		Month:    strings.TrimSpace(q.Get("mes")),
		Activity: strings.TrimSpace(q.Get("actividad")),
	}
}

// parsePage extracts the requested page number, defaulting to 1.
func parsePage(r *http.Request) int {
	v := strings.TrimSpace(r.URL.Query().Get("page"))
	if v == "" {
		return 1
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseIndex extracts the record index path parameter.
func parseIndex(r *http.Request) (int, error) {
	v := r.PathValue("index")
	index, err := strconv.Atoi(v)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid record index %q", v)
	}
	return index, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// formatHours renders an hours value without trailing zeros.
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
