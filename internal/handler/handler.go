// Package handler exposes the JSON API consumed by the browser app.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frisoboot/examenbuddy/internal/catalog"
	"github.com/frisoboot/examenbuddy/internal/chat"
	"github.com/frisoboot/examenbuddy/internal/flashcards"
	appI18n "github.com/frisoboot/examenbuddy/internal/i18n"
	"github.com/frisoboot/examenbuddy/internal/llm"
	"github.com/frisoboot/examenbuddy/internal/model"
	"github.com/frisoboot/examenbuddy/internal/session"
	"github.com/frisoboot/examenbuddy/internal/store"
	"github.com/frisoboot/examenbuddy/internal/topics"
)

// Config holds handler-level settings.
type Config struct {
	SecureCookies bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store      *store.Store
	catalog    *catalog.Catalog
	sessions   *session.Controller
	topics     *topics.Service
	flashcards *flashcards.Service
	chat       *chat.Service
	config     Config
}

// New creates a new Handler.
func New(s *store.Store, c *catalog.Catalog, sc *session.Controller, ts *topics.Service, fs *flashcards.Service, cs *chat.Service, cfg Config) *Handler {
	return &Handler{
		store:      s,
		catalog:    c,
		sessions:   sc,
		topics:     ts,
		flashcards: fs,
		chat:       cs,
		config:     cfg,
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.deviceMiddleware)

	r.Get("/api/subjects", h.handleSubjects)
	r.Get("/api/subjects/{subjectID}/topics", h.handleTopics)

	r.Get("/api/profile", h.handleGetProfile)
	r.Put("/api/profile", h.handlePutProfile)
	r.Delete("/api/profile", h.handleDeleteProfile)

	r.Post("/api/practice", h.handleStartPractice)
	r.Get("/api/practice/{sessionID}", h.handleGetPractice)
	r.Post("/api/practice/{sessionID}/answer", h.handleSubmitAnswer)
	r.Post("/api/practice/{sessionID}/advance", h.handleAdvance)

	r.Post("/api/flashcards", h.handleFlashcards)
	r.Post("/api/chat", h.handleChat)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

var errBadBody = errors.New("malformed request body")

// writeError maps domain errors to HTTP statuses with a localized message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := http.StatusInternalServerError
	msgID := "ErrInvalidRequest"

	var invalid *llm.ErrInvalidResponse
	var unavailable *llm.ErrProviderUnavailable

	switch {
	case errors.Is(err, errBadBody):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNoProfile):
		status, msgID = http.StatusNotFound, "ErrProfileRequired"
	case errors.Is(err, model.ErrProfileName),
		errors.Is(err, model.ErrProfileLevel),
		errors.Is(err, model.ErrProfileYear):
		status, msgID = http.StatusBadRequest, "ErrProfileInvalid"
	case errors.Is(err, session.ErrNotFound):
		status, msgID = http.StatusNotFound, "ErrSessionNotFound"
	case errors.Is(err, session.ErrNotActive):
		status, msgID = http.StatusConflict, "ErrSessionNotActive"
	case errors.Is(err, session.ErrSubmissionInFlight):
		status, msgID = http.StatusConflict, "ErrSubmissionInFlight"
	case errors.Is(err, session.ErrLimitReached):
		status, msgID = http.StatusConflict, "ErrLimitReached"
	case errors.Is(err, session.ErrEmptyAnswer):
		status, msgID = http.StatusBadRequest, "ErrEmptyAnswer"
	case errors.Is(err, chat.ErrEmptyMessage):
		status, msgID = http.StatusBadRequest, "ErrEmptyMessage"
	case errors.Is(err, session.ErrInvalidMode):
		status, msgID = http.StatusBadRequest, "ErrInvalidRequest"
	case errors.As(err, &invalid), errors.Is(err, session.ErrMissingFeedback), errors.Is(err, session.ErrUnexpectedFeedback):
		status, msgID = http.StatusUnprocessableEntity, "ErrInvalidModelResponse"
	case errors.As(err, &unavailable):
		status, msgID = http.StatusBadGateway, "ErrModelUnavailable"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: appI18n.T(ctx, msgID)})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// subjectFromRequest resolves a subject id from the URL or a request body.
func (h *Handler) subject(id string) (model.Subject, bool) {
	return h.catalog.Get(id)
}

func (h *Handler) handleSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.All())
}

func (h *Handler) handleTopics(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.subject(chi.URLParam(r, "subjectID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: appI18n.T(r.Context(), "ErrUnknownSubject")})
		return
	}
	profile, err := h.requireProfile(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Suggestions are advisory: a model failure degrades to an empty list so
	// the student can still type a topic by hand.
	suggested, err := h.topics.Suggest(r.Context(), subject, *profile)
	if err != nil {
		slog.Warn("topic suggestion failed", "subject", subject.ID, "error", err)
		suggested = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": suggested})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.requireProfile(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p model.UserProfile
	if err := decodeBody(r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.PutProfile(deviceToken(r), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProfile(deviceToken(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID string   `json:"subjectId"`
		Topics    []string `json:"topics"`
		FreeTopic string   `json:"freeTopic"`
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

	set, err := h.flashcards.Generate(r.Context(), subject, *profile, topics.Combine(req.Topics, req.FreeTopic))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}
