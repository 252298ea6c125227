// Package server runs the ephemeral loopback file server that backs a render
// run. The OS picks the port so concurrent runs never collide, and the server
// is shut down explicitly when the run ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves a project root as static files on 127.0.0.1.
type Server struct {
	root   string
	logger *slog.Logger

	ln   net.Listener
	http *http.Server
	done chan struct{}
}

// New creates a Server for the given project root. Call Start to bind.
func New(root string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{root: root, logger: logger}
}

// Start binds to an OS-assigned loopback port and serves in the background.
// Per-request access logging is deliberately absent to keep run output
// readable; only panics are surfaced via the recoverer.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/*", http.FileServer(http.Dir(s.root)))

	s.http = &http.Server{Handler: r}
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server: serve", "error", err)
		}
	}()

	s.logger.Info("server: listening", "addr", ln.Addr().String(), "root", s.root)
	return nil
}

// BaseURL returns the server's base address, e.g. "http://127.0.0.1:49301".
func (s *Server) BaseURL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Shutdown stops the server gracefully and waits for the serve goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	err := s.http.Shutdown(ctx)
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
