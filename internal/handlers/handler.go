package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// Pinger is the slice of a store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	messages Pinger
	index    Pinger
}

// NewHandler creates a new Handler over the message and index stores.
func NewHandler(messages, index Pinger) *Handler {
	return &Handler{messages: messages, index: index}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
