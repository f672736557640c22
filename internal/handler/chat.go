package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	appI18n "github.com/frisoboot/examenbuddy/internal/i18n"
	"github.com/frisoboot/examenbuddy/internal/model"
)

// handleChat streams a tutor reply over server-sent events. Each text chunk
// arrives as a "chunk" event; the stream always closes with a "done" event.
// A mid-stream model failure turns into one apology chunk, after any text
// already delivered.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID string              `json:"subjectId"`
		History   []model.ChatMessage `json:"history"`
		Message   string              `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	subject, ok := h.subject(req.SubjectID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "ErrUnknownSubject")})
		return
	}
	profile, err := h.requireProfile(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	chunks, err := h.chat.Stream(r.Context(), subject, *profile, req.History, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for chunk := range chunks {
		if chunk.Err != nil {
			slog.Warn("chat stream failed", "subject", subject.ID, "error", chunk.Err)
			writeSSE(w, "chunk", map[string]string{"text": appI18n.T(r.Context(), "ChatApology")})
			break
		}
		writeSSE(w, "chunk", map[string]string{"text": chunk.Text})
		flusher.Flush()
	}

	writeSSE(w, "done", map[string]string{})
	flusher.Flush()
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("encode sse payload", "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
