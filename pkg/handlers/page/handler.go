package page

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/de-tools/route-trends/pkg/models/api"
	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/services/session"
	"github.com/de-tools/route-trends/pkg/store/form"
	"github.com/de-tools/route-trends/pkg/views/timeseries"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	CookieName = "route_trends_session"

	actionAnalyze = "analyze"
)

type Handler struct {
	sessions *session.Registry
}

func NewHandler(sessions *session.Registry) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	view := session.IdleView()
	if s, ok := h.lookup(r); ok {
		view = s.View()
	}

	var buf bytes.Buffer
	if err := renderPage(&buf, view); err != nil {
		logger.Error().Err(err).Msg("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error().Err(err).Msg("failed to write page")
	}
}

// SubmitForm applies posted field values and, for action=analyze, activates
// the trigger. Fields absent from the post are left alone.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s := h.session(w, r)
	for _, field := range domain.Fields {
		if _, ok := r.PostForm[string(field)]; !ok {
			continue
		}
		if err := s.SetField(string(field), r.PostForm.Get(string(field))); err != nil {
			logger.Error().Err(err).Str("field", string(field)).Msg("failed to update field")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if r.PostForm.Get("action") == actionAnalyze && !s.Trigger() {
		logger.Debug().Msg("trigger ignored while analysis is in progress")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	s, ok := h.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	c := s.View().Chart
	if c == nil {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := c.Render(&buf, timeseries.FormatSVG); err != nil {
		logger.Error().Err(err).Msg("failed to render chart")
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", timeseries.FormatSVG.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error().Err(err).Msg("failed to write chart")
	}
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	view := session.IdleView()
	if s, ok := h.lookup(r); ok {
		view = s.View()
	}
	writeJSON(w, r, http.StatusOK, MapViewToAPIState(view))
}

func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	field := chi.URLParam(r, "field")

	var update api.FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := form.ParseField(field); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s := h.session(w, r)

	if err := s.SetField(field, update.Value); err != nil {
		if errors.Is(err, form.ErrUnknownField) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error().Err(err).Str("field", field).Msg("failed to update field")
		http.Error(w, "failed to update field", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, MapViewToAPIState(s.View()))
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	if !s.Trigger() {
		http.Error(w, "analysis already in progress", http.StatusConflict)
		return
	}
	writeJSON(w, r, http.StatusAccepted, MapViewToAPIState(s.View()))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok", "sessions": h.sessions.Len()})
}

// lookup resolves the caller's session from the cookie without starting one.
func (h *Handler) lookup(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return h.sessions.Get(c.Value)
}

// session resolves the caller's session from the cookie, starting a new one
// when the cookie is missing or stale. Only state-changing requests use it.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}

	s, created := h.sessions.GetOrCreate(id)
	if created {
		zerolog.Ctx(r.Context()).Info().Str("session", s.ID()).Msg("session started")
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
