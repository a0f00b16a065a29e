package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/auth"
	"github.com/hongminglow/airfreight/internal/config"
	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/http/handlers"
	"github.com/hongminglow/airfreight/internal/http/respond"
	"github.com/hongminglow/airfreight/internal/middleware"
	"github.com/hongminglow/airfreight/internal/sim"
)

// Deps are the services the routes call into.
type Deps struct {
	Game      *game.Service
	Scheduler *sim.Scheduler
	Tokens    *auth.TokenManager
	Log       *zap.Logger
	// Now is the wall clock handed to the scheduler; nil means time.Now.
	Now func() time.Time
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Router(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// Router builds the HTTP handler. Every request first brings the simulation up to date.
func Router(cfg config.Config, deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Tick(deps.Scheduler, now, log.Named("tick")))
	r.Use(middleware.Authenticate(deps.Tokens))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	handlers.NewHealthHandler(now(), deps.Scheduler).Register(r)
	handlers.NewCatalogHandler(deps.Game, log).Register(r)
	handlers.NewPlaneHandler(deps.Game, log).Register(r)
	handlers.NewPackageHandler(deps.Game, log).Register(r)
	handlers.NewUserHandler(deps.Game, log).Register(r)
	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
