package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/frisoboot/examenbuddy/internal/i18n"
	"github.com/frisoboot/examenbuddy/internal/model"
	"github.com/frisoboot/examenbuddy/internal/session"
	"github.com/frisoboot/examenbuddy/internal/topics"
)

func (h *Handler) handleStartPractice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID     string   `json:"subjectId"`
		Mode          string   `json:"mode"`
		Topics        []string `json:"topics"`
		FreeTopic     string   `json:"freeTopic"`
		QuestionLimit int      `json:"questionLimit"`
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

	mode := model.SessionMode(req.Mode)
	if req.Mode == "" {
		mode = model.ModePractice
	}

	focus := topics.Combine(req.Topics, req.FreeTopic)
	s, err := h.sessions.Start(r.Context(), subject, *profile, focus, mode, req.QuestionLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.View())
}

func (h *Handler) handleGetPractice(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.localizeView(r, s.View()))
}

func (h *Handler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "sessionID")
	if _, err := h.sessions.SubmitAnswer(r.Context(), id, req.Answer); err != nil {
		h.writeError(w, r, err)
		return
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	v, err := h.sessions.Advance(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.localizeView(r, v))
}

// localizeView fills in the summary fallback when a finished session could
// not fetch one from the model.
func (h *Handler) localizeView(r *http.Request, v session.View) session.View {
	if v.State == model.StateFinished && v.Summary == "" {
		v.Summary = appI18n.T(r.Context(), "SummaryFallback")
	}
	return v
}
