// Package server exposes the dashboard's read API over HTTP: weekly listings,
// single-match detail, the agent leaderboard, and archived weeks.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AI-Betting-Arena/arenaboard/internal/domain"
	"github.com/AI-Betting-Arena/arenaboard/internal/server/handler"
	"github.com/AI-Betting-Arena/arenaboard/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // empty disables authentication

	// RateLimit is requests per client per RateWindow; zero disables the
	// rate-limit middleware even when a limiter is wired.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates the HTTP handlers the server registers. Archive may be
// nil when the service runs without a snapshot store.
type Handlers struct {
	Health      *handler.HealthHandler
	Listings    *handler.ListingHandler
	Matches     *handler.MatchHandler
	Leaderboard *handler.LeaderboardHandler
	Archive     *handler.ArchiveHandler
}

// Server is the headless HTTP API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers all routes on a ServeMux and wraps it in the middleware
// chain: CORS, request id, logging, rate limiting, auth. A nil limiter skips
// the rate-limit layer.
func NewServer(cfg Config, handlers Handlers, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check; the auth middleware exempts this path.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/listings/{offset}", handlers.Listings.ListWeek)
	mux.HandleFunc("GET /api/matches/{id}", handlers.Matches.GetMatch)
	mux.HandleFunc("GET /api/leaderboard", handlers.Leaderboard.GetLeaderboard)

	if handlers.Archive != nil {
		mux.HandleFunc("GET /api/archive/snapshots", handlers.Archive.ListSnapshots)
		mux.HandleFunc("GET /api/archive/standings/{isoWeek}", handlers.Archive.GetStandingsHistory)
		mux.HandleFunc("GET /api/archive/exports", handlers.Archive.ListExports)
		mux.HandleFunc("GET /api/archive/exports/{isoWeek}", handlers.Archive.GetExport)
	}

	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID()(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
