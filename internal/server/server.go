package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lowember/ember/internal/engine"
)

// Pinger is implemented by journals that can report their health.
type Pinger interface {
	Ping() error
}

// ModeCounter is implemented by journals that can total exchanges per mode.
type ModeCounter interface {
	ModeCounts(ctx context.Context) (map[string]int, error)
}

// ExchangeCounter is implemented by journals that can count one session's
// exchanges.
type ExchangeCounter interface {
	CountExchanges(ctx context.Context, token string) (int, error)
}

// Server is the ember HTTP server.
type Server struct {
	engine  *engine.Engine
	router  chi.Router
	log     *zap.Logger
	version string
	started time.Time
}

// New creates a new Server around eng. A nil logger disables request logs.
func New(eng *engine.Engine, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  eng,
		log:     logger,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/reply", s.handleReply)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/reply", s.handleReply)
		r.Get("/session", s.handleSession)
		r.Get("/session/history", s.handleHistory)
	})

	r.NotFound(uiHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	journalOK := true
	if p, ok := s.engine.Journal.(Pinger); ok {
		if err := p.Ping(); err != nil {
			journalOK = false
		}
	}

	body := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"sessions": s.engine.Sessions.Len(),
		"journal":  journalOK,
	}
	if c, ok := s.engine.Journal.(ModeCounter); ok {
		counts, err := c.ModeCounts(r.Context())
		if err != nil {
			s.log.Warn("journal mode counts", zap.Error(err))
		} else {
			body["exchanges"] = counts
		}
	}

	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
