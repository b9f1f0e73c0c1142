// Package httpserver wraps net/http server construction so timeouts stay
// consistent across entry points.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

// Server wraps http.Server with sane defaults.
type Server struct {
	srv *http.Server
}

// New builds a server with conservative timeouts for a public-facing API.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// ListenAndServe starts accepting connections.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
