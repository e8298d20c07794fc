// Package web serves the browser front end and its JSON API.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/prediction"
	"github.com/comigor/sentiment-go/internal/session"
)

// CookieName carries the browser's session id.
const CookieName = "sentiment_session"

//go:embed index.html.tmpl
var templates embed.FS

// Server routes browser requests to per-browser sessions.
type Server struct {
	registry *session.Registry
	tmpl     *template.Template
	now      func() time.Time
}

// New creates a Server backed by registry.
func New(registry *session.Registry) *Server {
	tmpl := template.Must(template.New("index.html.tmpl").Funcs(template.FuncMap{
		"percent": prediction.FormatPercent,
		"ago": func(r prediction.Result, now time.Time) string {
			return prediction.TimeAgo(r.CreatedAt(), now)
		},
	}).ParseFS(templates, "index.html.tmpl"))

	return &Server{registry: registry, tmpl: tmpl, now: time.Now}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /submit", s.handleFormSubmit)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("PUT /api/draft", s.handleDraft)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

// sessionFor resolves the caller's session, starting one (and setting the
// cookie) when the cookie is missing or stale.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Controller {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}
	ctrl, created := s.registry.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    ctrl.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		logger.L.Info("session started", "session", ctrl.ID())
	}
	return ctrl
}

type pageData struct {
	View  session.View
	Error string
	Now   time.Time
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.Execute(w, data); err != nil {
		logger.L.Error("render page error", "err", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(w, r)
	s.renderPage(w, http.StatusOK, pageData{View: ctrl.View(), Now: s.now()})
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	err := ctrl.SubmitText(r.Context(), r.PostFormValue("text"))
	if err != nil {
		status, msg := errorStatus(err)
		s.renderPage(w, status, pageData{View: ctrl.View(), Error: msg, Now: s.now()})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(w, r)
	writeJSON(w, http.StatusOK, ctrl.View())
}

type draftRequest struct {
	Text *string `json:"text"`
}

type errorResponse struct {
	Error string       `json:"error"`
	Kind  string       `json:"kind,omitempty"`
	View  session.View `json:"state"`
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(w, r)
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"text\": string}", View: ctrl.View()})
		return
	}
	if err := ctrl.SetDraft(*req.Text); err != nil {
		status, msg := errorStatus(err)
		writeJSON(w, status, errorResponse{Error: msg, View: ctrl.View()})
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

// handleSubmit submits the session draft, or body.text when given.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFor(w, r)

	var req draftRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", View: ctrl.View()})
			return
		}
	}
	if req.Text != nil {
		if err := ctrl.SetDraft(*req.Text); err != nil {
			status, msg := errorStatus(err)
			writeJSON(w, status, errorResponse{Error: msg, View: ctrl.View()})
			return
		}
	}

	// Blank drafts are skipped silently; in-flight sessions fall through to a 409.
	if v := ctrl.View(); !v.CanSubmit && !v.Loading {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := ctrl.Submit(r.Context()); err != nil {
		status, msg := errorStatus(err)
		resp := errorResponse{Error: msg, View: ctrl.View()}
		var f *prediction.Failure
		if errors.As(err, &f) {
			resp.Kind = f.Kind.String()
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.View())
}

func errorStatus(err error) (int, string) {
	if errors.Is(err, session.ErrSubmissionInFlight) {
		return http.StatusConflict, err.Error()
	}
	var f *prediction.Failure
	if errors.As(err, &f) {
		return http.StatusBadGateway, f.Message
	}
	return http.StatusInternalServerError, err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("write response error", "err", err)
	}
}
