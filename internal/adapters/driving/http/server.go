package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
	"github.com/auction-man/vasa-auth/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	loginService   driving.LoginService
	profileService driving.ProfileService
	sessions       driven.SessionTokens

	// Cookie and redirect settings
	cookieDomain     string
	sessionTTL       time.Duration
	defaultReturnURL string

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// CookieDomain is the parent domain the session cookie is scoped to,
	// so the frontend on the apex domain can read it.
	CookieDomain     string
	SessionTTL       time.Duration
	DefaultReturnURL string

	// AppOrigin is the single frontend origin allowed to call the
	// credentialed profile endpoints.
	AppOrigin string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	loginService driving.LoginService,
	profileService driving.ProfileService,
	sessions driven.SessionTokens,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		loginService:     loginService,
		profileService:   profileService,
		sessions:         sessions,
		cookieDomain:     cfg.CookieDomain,
		sessionTTL:       cfg.SessionTTL,
		defaultReturnURL: cfg.DefaultReturnURL,
		db:               db,
		redisClient:      redisClient,
	}

	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg.AppOrigin)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(appOrigin string) {
	cors := NewCORSMiddleware(appOrigin)

	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Login flow (browser navigation, no CORS needed)
	s.router.HandleFunc("GET /auth/start", s.handleStart)
	s.router.HandleFunc("GET /auth/finalize", s.handleFinalize)

	// Profile endpoints (cross-origin fetch from the frontend, credentialed)
	s.router.Handle("POST /profile/complete", cors.Handler(http.HandlerFunc(s.handleCompleteProfile)))
	s.router.Handle("OPTIONS /profile/complete", cors.Handler(http.NotFoundHandler()))
	s.router.Handle("GET /profile/me", cors.Handler(http.HandlerFunc(s.handleGetProfile)))
	s.router.Handle("OPTIONS /profile/me", cors.Handler(http.NotFoundHandler()))
}

// Handler exposes the full middleware-wrapped handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
