// Package server hosts the harvested artifacts and the asciinema
// player page over plain HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/pkg/log"
)

// Server serves the working directory so the recorded casts and the
// harvested JSON can be opened in a browser.
type Server struct {
	Logger log.Logger
	Config *cfg.Config
	server *http.Server
	port   int

	// Dir is the directory to serve; defaults to the working directory.
	Dir string
}

func NewServer(logger log.Logger, config *cfg.Config, port int) (*Server, error) {
	return &Server{
		Logger: logger,
		Config: config,
		port:   port,
		Dir:    ".",
	}, nil
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.Dir)))
	return mux
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Serving on http://localhost:%d/index.html", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
