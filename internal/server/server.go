// Package server implements the HTTP API that exposes live A2S queries and
// snapshot history to admin panels and monitoring.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/woozymasta/ssq/internal/config"
	"github.com/woozymasta/ssq/internal/probe"
	"github.com/woozymasta/ssq/internal/storage"
)

// Server holds the dependencies and configuration of the HTTP API.
type Server struct {
	// prober runs the live queries.
	prober *probe.Prober

	// storage records every snapshot served by /api/info and answers /api/history.
	// It is nil when history is disabled.
	storage *storage.Repository

	// shutdown stops the rate limiter cleanup goroutine.
	shutdown chan struct{}

	// authToken is the bearer token required by every /api endpoint except /api/version.
	authToken string

	closeOnce sync.Once

	// defaultPort applies to targets given without a port.
	defaultPort int

	// limitCount requests are allowed per client IP within limitWin.
	limitCount int
	limitWin   time.Duration

	// trustProxy enables X-Forwarded-For and CF-Connecting-IP.
	trustProxy bool
}

// New creates a Server. store may be nil.
func New(prober *probe.Prober, store *storage.Repository, cfg *config.Config) *Server {
	return &Server{
		prober:      prober,
		storage:     store,
		authToken:   cfg.Server.AuthToken,
		trustProxy:  cfg.Server.TrustProxy,
		defaultPort: cfg.Query.DefaultPort,
		limitCount:  cfg.RateLimit.Count,
		limitWin:    cfg.RateLimit.Window,
		shutdown:    make(chan struct{}),
	}
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler {
		return s.RateLimitMiddleware(AdminAuthMiddleware(s.authToken, h))
	}

	mux.Handle("GET /api/info", protect(s.handleInfo))
	mux.Handle("GET /api/players", protect(s.handlePlayers))
	mux.Handle("GET /api/history", protect(s.handleHistory))
	mux.Handle("GET /api/version", http.HandlerFunc(s.handleVersion))

	return s.LoggingMiddleware(mux)
}

// Close stops background goroutines started by Run.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.shutdown) })
}
