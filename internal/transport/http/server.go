// Package httptransport wraps the standard HTTP server with the timeouts
// and shutdown behaviour the API expects.
package httptransport

import (
	"context"
	"net/http"
	"time"
)

// ServerConfig contains tunables for the HTTP server. Zero values fall back
// to defaults suited to a small JSON API.
type ServerConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps http.Server with a bounded graceful shutdown.
type Server struct {
	inner           *http.Server
	shutdownTimeout time.Duration
}

// NewServer builds a Server around the handler.
func NewServer(cfg ServerConfig, handler http.Handler) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	return &Server{
		inner: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	return s.inner.ListenAndServe()
}

// Shutdown drains in-flight requests, waiting at most the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.inner.Shutdown(ctx)
}
