package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m-mizutani/actsync/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr        string
	functionKey string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithFunctionKey requires clients of the catalog API to send key
func WithFunctionKey(key string) Option {
	return func(c *config) {
		c.functionKey = key
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server exposing the catalog API
func NewServer(
	ctx context.Context,
	catalogUC interfaces.CatalogUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(CorrelationIDMiddleware)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", NewHealthHandler(catalogUC).Handle)

	// Catalog API
	actions := NewActionsHandler(catalogUC)
	router.Route("/api/actions", func(r chi.Router) {
		r.Use(FunctionKeyMiddleware(cfg.functionKey))
		r.Get("/list", actions.List)
		r.Post("/upsert", actions.Upsert)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
