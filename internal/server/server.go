// ABOUTME: HTTP surface for the chatbot: chi router, JSON assistant endpoint, WebSocket chat, health
// ABOUTME: Engines are read through a Holder so a reload swaps them without restarting

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/log"
	"github.com/mauromedda/portfolio-bot/internal/typing"
)

// MaxBodyBytes bounds an assistant request body.
const MaxBodyBytes = 16 << 10

// shutdownTimeout is how long in-flight requests get after the context ends.
const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Engines        *chatbot.Holder
	Pacer          typing.Pacer // typing delay for WebSocket replies
	AllowedOrigins []string     // cross-origin callers; empty means same origin only
	Version        string
	Logger         *slog.Logger // defaults to log.Logger()
}

// Server serves the assistant over HTTP and WebSocket.
type Server struct {
	engines *chatbot.Holder
	pacer   typing.Pacer
	origins []string
	version string
	logger  *slog.Logger
	started time.Time
}

// New creates a server. Engines must be non-nil.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Logger()
	}
	return &Server{
		engines: opts.Engines,
		pacer:   opts.Pacer,
		origins: opts.AllowedOrigins,
		version: opts.Version,
		logger:  logger,
		started: time.Now(),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(CORS(s.origins))

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/assistant", s.handleAssistant)
	r.Get("/api/assistant/ws", s.handleWebSocket)
	return r
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Intents int    `json:"intents"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.version,
		Intents: len(s.engines.Engine().Catalog().Rules()),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}
