// Package server exposes the resolution engine over HTTP: a JSON turn
// endpoint, a websocket chat channel, and the knowledge admin surface.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/guestdesk/concierge/internal/config"
	"github.com/guestdesk/concierge/internal/engine"
	"github.com/guestdesk/concierge/internal/knowledge"
)

// Server serves the concierge API.
type Server struct {
	cfg        *config.Config
	engine     *engine.Engine
	knowledge  *knowledge.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server around an assembled engine and knowledge store.
func New(cfg *config.Config, eng *engine.Engine, ks *knowledge.Store) *Server {
	s := &Server{cfg: cfg, engine: eng, knowledge: ks}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.Server.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/turn", s.handleTurn)
		r.Get("/properties", s.handleProperties)
		r.Get("/knowledge/{property}/{lang}", s.handleGetKnowledge)
		r.Put("/knowledge/{property}/{lang}", s.handlePutKnowledge)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// Router returns the chi router, useful for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("concierge server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
