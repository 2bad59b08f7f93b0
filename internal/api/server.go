// Package api exposes the subscription gateway over HTTP: one
// endpoint group per configured form, plus health.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ignite/subscription-gateway/internal/config"
	"github.com/ignite/subscription-gateway/internal/ratelimit"
	"github.com/ignite/subscription-gateway/internal/subscription"
)

// Server wires subscribers, the edge limiter, and the router.
type Server struct {
	cfg        config.ServerConfig
	forms      map[string]*subscription.Subscriber
	edge       ratelimit.KeyedLimiter
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates the API server. forms maps form ID to its
// subscriber; edge may be nil to disable per-client admission control.
func NewServer(cfg config.ServerConfig, forms map[string]*subscription.Subscriber, edge ratelimit.KeyedLimiter) *Server {
	return &Server{
		cfg:       cfg,
		forms:     forms,
		edge:      edge,
		startedAt: time.Now(),
	}
}

// Start begins serving and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.GetHost(), s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("[api] listening on %s (%d forms)", addr, len(s.forms))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
