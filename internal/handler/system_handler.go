package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"smart-blog-api/internal/model"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type SystemHandler struct {
	db healthChecker
}

func NewSystemHandler(db healthChecker) *SystemHandler {
	return &SystemHandler{db: db}
}

func (h *SystemHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Smart Blog Editor API is running"})
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorResponse{Detail: "Database unavailable", Code: "UNAVAILABLE"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
