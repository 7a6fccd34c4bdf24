package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "0.1.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health handles the liveness probe. HEAD requests get the status code
// only.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	allHealthy := true

	checks["messages"], allHealthy = h.check(ctx, h.messages, allHealthy)
	checks["index"], allHealthy = h.check(ctx, h.index, allHealthy)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(statusCode)
		return
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   version,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) check(ctx context.Context, store Pinger, healthy bool) (Check, bool) {
	if store == nil {
		return Check{Status: "fail", Message: "not configured"}, false
	}

	start := time.Now()
	if err := store.Ping(ctx); err != nil {
		return Check{Status: "fail", Message: "connection failed"}, false
	}
	return Check{Status: "pass", Latency: time.Since(start).String()}, healthy
}
