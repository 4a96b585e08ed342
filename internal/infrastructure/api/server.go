package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"

	"checkmate-agent/internal/application/port/input"
	"checkmate-agent/internal/application/port/output"
)

type Server struct {
	notes     input.NoteGenerator
	screener  input.Screener
	logger    output.LoggerPort
	service   string
	authToken string
}

type Config struct {
	Notes    input.NoteGenerator
	Screener input.Screener
	Logger   output.LoggerPort
	// AuthToken, when set, is required as a bearer token on every route
	// except health.
	AuthToken string
}

func NewServer(cfg Config) *Server {
	return &Server{
		notes:     cfg.Notes,
		screener:  cfg.Screener,
		logger:    cfg.Logger,
		service:   "checkmate-agent",
		authToken: cfg.AuthToken,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	requestLogger := httplog.NewLogger(s.service, httplog.Options{
		JSON:    true,
		Concise: true,
	})
	r.Use(httplog.RequestLogger(requestLogger))
	r.Use(middleware.Recoverer)
	r.Use(RequestID)

	r.Get("/health", s.health)

	r.Group(func(r chi.Router) {
		if s.authToken != "" {
			r.Use(s.requireAuth)
		}
		r.Post("/v2/getCommunityNote", s.getCommunityNote)
		r.Post("/getNeedsChecking", s.getNeedsChecking)
		r.Post("/sensitivity-filter", s.sensitivityFilter)
		r.Post("/redact", s.redact)
	})

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.authToken {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
