package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/uiengineer"
	"github.com/aretw0/uiengineer/internal/logging"
	"github.com/aretw0/uiengineer/internal/runtime"
	"github.com/aretw0/uiengineer/internal/sanitize"
	"github.com/aretw0/uiengineer/pkg/app"
	"github.com/aretw0/uiengineer/pkg/fastui"
	"github.com/aretw0/uiengineer/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
)

// maxFormMemory bounds multipart form parsing; larger bodies are rejected.
const maxFormMemory = 1 << 20

// AppService is the part of *app.Service the transport drives.
type AppService interface {
	Render(ctx context.Context, appID, action string) ([]fastui.Component, error)
	Submit(ctx context.Context, appID string, form url.Values) (fastui.Component, error)
	Create(ctx context.Context, description string) (string, error)
	Delete(ctx context.Context, appID string) error
	List(ctx context.Context) ([]string, error)
}

// Server serves the FastUI JSON API, the HTML shell and the change stream.
type Server struct {
	Service AppService
	Streams *StreamManager

	title       string
	corsOrigins []string
	metrics     http.Handler
	logger      *slog.Logger
}

type Option func(*Server)

// WithTitle sets the HTML page and landing title.
func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// WithCORSOrigins restricts cross-origin access. An empty list allows any
// origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for svc.
func NewServer(svc AppService, opts ...Option) *Server {
	s := &Server{
		Service: svc,
		title:   "UI Engineer",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler is a shortcut for NewServer(svc, opts...).Handler().
func NewHandler(svc AppService, opts ...Option) http.Handler {
	return NewServer(svc, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.enableCORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.Landing)
		r.Post("/", s.CreateApp)
		r.Get("/{app}", s.ShowApp)
		r.Post("/{app}", s.SubmitApp)
		r.Delete("/{app}", s.DeleteApp)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "no such endpoint"})
		})
	})
	r.Post("/", s.CreateApp)

	r.Get("/apps", s.ListApps)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/events/{app}", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	// Every other path is a client-side route of the FastUI frontend.
	r.Get("/*", s.Shell)
	return r
}

// Follow broadcasts every change reported by w until ctx is done.
func (s *Server) Follow(ctx context.Context, w ports.Watchable) error {
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for appID := range events {
		s.Streams.Broadcast(appID, changeMessage(appID))
	}
	return nil
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed := s.allowOrigin(origin); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	if len(s.corsOrigins) == 0 {
		return "*"
	}
	for _, o := range s.corsOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// Landing handles GET /api/.
func (s *Server) Landing(w http.ResponseWriter, r *http.Request) {
	writeComponents(w, s.logger, app.Landing(s.title))
}

// CreateApp handles POST /api/: the landing form.
func (s *Server) CreateApp(w http.ResponseWriter, r *http.Request) {
	form, ok := s.readForm(w, r)
	if !ok {
		return
	}

	appID, err := s.Service.Create(r.Context(), form.Get(app.CreateField))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeComponents(w, s.logger, []fastui.Component{app.CreateRedirect(appID)})
}

// ShowApp handles GET /api/{app}?action=...
func (s *Server) ShowApp(w http.ResponseWriter, r *http.Request) {
	appID, ok := s.appParam(w, r)
	if !ok {
		return
	}

	action, err := sanitize.Input(r.URL.Query().Get(runtime.ActionParam))
	if err != nil {
		s.logger.Warn("ShowApp: action rejected", "app_id", appID, "err", err)
		s.writeError(w, r, err)
		return
	}

	components, err := s.Service.Render(r.Context(), appID, action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeComponents(w, s.logger, components)
}

// SubmitApp handles POST /api/{app}: a form generated for the app.
func (s *Server) SubmitApp(w http.ResponseWriter, r *http.Request) {
	appID, ok := s.appParam(w, r)
	if !ok {
		return
	}
	form, ok := s.readForm(w, r)
	if !ok {
		return
	}

	event, err := s.Service.Submit(r.Context(), appID, form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeComponents(w, s.logger, []fastui.Component{event})
}

// DeleteApp handles DELETE /api/{app}.
func (s *Server) DeleteApp(w http.ResponseWriter, r *http.Request) {
	appID, ok := s.appParam(w, r)
	if !ok {
		return
	}
	if err := s.Service.Delete(r.Context(), appID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListApps handles GET /apps.
func (s *Server) ListApps(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"apps": ids})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "uiengineer-http",
		"version": strings.TrimSpace(uiengineer.Version),
		"title":   s.title,
	})
}

// SubscribeEvents handles GET /events and GET /events/{app} (SSE). Without
// an app the stream carries changes of every app.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	appID := AllApps
	if chi.URLParam(r, "app") != "" {
		var ok bool
		if appID, ok = s.appParam(w, r); !ok {
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(appID)
	defer cancel()
	s.logger.Info("SSE: client subscribed", "app_id", appID)

	writeEvent(w, "ping", "connected")
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "app_id", appID)
			return
		case <-heartbeat.C:
			writeEvent(w, "ping", "keep-alive")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "", msg)
			flusher.Flush()
		}
	}
}

// Shell handles every other GET with the FastUI prebuilt page.
func (s *Server) Shell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := shell.Execute(w, shellData{Title: s.title, APIRoot: runtime.APIPrefix, Version: PrebuiltVersion}); err != nil {
		s.logger.Error("Shell: template failed", "err", err)
	}
}

// appParam reads and unescapes the {app} segment.
func (s *Server) appParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	appID := chi.URLParam(r, "app")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(appID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed app path"})
			return "", false
		}
		appID = unescaped
	}
	return appID, true
}

// readForm parses a urlencoded or multipart body and sanitizes it.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.logger.Warn("invalid form body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid form body"})
		return nil, false
	}

	form, err := sanitize.Form(r.PostForm)
	if err != nil {
		s.logger.Warn("form rejected", "path", r.URL.Path, "err", err)
		s.writeError(w, r, err)
		return nil, false
	}
	return form, true
}

func writeComponents(w http.ResponseWriter, logger *slog.Logger, components []fastui.Component) {
	body, err := fastui.Encode(components)
	if err != nil {
		logger.Error("response encode failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to encode response"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
