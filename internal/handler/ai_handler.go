package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"smart-blog-api/internal/model"
	"smart-blog-api/internal/service"
)

type AIHandler struct {
	service *service.AIService
}

func NewAIHandler(service *service.AIService) *AIHandler {
	return &AIHandler{service: service}
}

// Generate answers with text/plain. On the streaming path each chunk is
// flushed as soon as it arrives; once the status line is out, a later
// upstream failure can only end the body early.
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.GenerateRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	gen, err := h.service.Generate(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	defer gen.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	err = gen.Each(r.Context(), func(chunk string) error {
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		slog.Debug("ai stream cancelled by client", "action", payload.Action)
	default:
		slog.Warn("ai stream ended early", "action", payload.Action, "error", err)
	}
}
