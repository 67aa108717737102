// Package httpserver provides a small HTTP server wrapper with graceful
// shutdown, used for the optional metrics endpoint.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

const (
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 5 * time.Second
	defaultAddr            = ":9090"
	defaultShutdownTimeout = 3 * time.Second
)

// Server wraps http.Server with background startup and bounded shutdown.
type Server struct {
	server          *http.Server
	errCh           chan error
	shutdownTimeout time.Duration
}

// Options configures the server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// New creates and starts a server in the background.
func New(handler http.Handler, opt Options) *Server {
	addr := opt.Addr
	if addr == "" {
		addr = defaultAddr
	}

	shutdownTimeout := opt.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	httpServer := &http.Server{
		Handler:      handler,
		Addr:         addr,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	srv := &Server{
		server:          httpServer,
		errCh:           make(chan error, 1),
		shutdownTimeout: shutdownTimeout,
	}

	go srv.start()

	return srv
}

func (s *Server) start() {
	s.errCh <- s.server.ListenAndServe()
	close(s.errCh)
}

// Shutdown stops the server, waiting up to the shutdown timeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}
