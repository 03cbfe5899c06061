// Package web provides the HTTP server and JSON handlers for the eventos API.
package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/eventos/internal/comment"
	"github.com/evcraddock/eventos/internal/config"
	"github.com/evcraddock/eventos/internal/event"
	"github.com/evcraddock/eventos/internal/logging"
	"github.com/evcraddock/eventos/internal/metrics"
	"github.com/evcraddock/eventos/internal/user"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 50 << 20

// Server is the API HTTP server.
type Server struct {
	commentRepo *comment.Repository
	eventRepo   *event.Repository
	users       *user.Store
	validate    *validator.Validate
	metrics     *metrics.Metrics
	cfg         config.Config
	mux         *http.ServeMux
	handler     http.Handler
}

// NewServer creates an API server backed by the given database.
func NewServer(db *sql.DB, cfg config.Config) (*Server, error) {
	s := &Server{
		commentRepo: comment.NewRepository(db),
		eventRepo:   event.NewRepository(db),
		users:       user.NewStore(db),
		validate:    newValidator(),
		metrics:     metrics.New(),
		cfg:         cfg,
		mux:         http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", s.metrics.Handler())
	s.mux.HandleFunc("/api/ping", s.handlePing)
	s.mux.HandleFunc("/api/eventos", s.handleAPIEvents)
	s.mux.HandleFunc("/api/eventos/", s.handleAPIEvents)
	s.mux.HandleFunc("/api/usuarios", s.handleAPIUsers)
	s.mux.HandleFunc("/api/usuarios/", s.handleAPIUsers)

	s.handler = logging.RequestLogger(s.metrics.Middleware(cors(cfg.CORSOrigin, s.mux)))

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for this handler listening on port.
func (s *Server) HTTPServer(port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handlePing answers GET /api/ping with the configured message.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apiJSON(w, map[string]string{"message": s.cfg.PingMessage}, http.StatusOK)
}

// cors allows browser clients served from origin to call the API.
func cors(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+logging.RequestIDHeader)
		h.Set("Access-Control-Expose-Headers", logging.RequestIDHeader)
		if origin != "*" {
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
