// Package server exposes the renderer over HTTP.
//
// A [Server] is built once by [New] from the configuration and its
// collaborators; it keeps its router as a field, so several servers can
// coexist in one process (tests do this).
//
// Routes:
//
//	POST /                render the interaction map in the body
//	POST /render          same as POST /
//	GET  /users/graph     render the ratings of ?user=... (needs a ratings store)
//	GET  /users/{id}/ego  render the neighbourhood of one user (needs a ratings store)
//	GET  /healthz         liveness and version
//
// Every other method/path pair answers 404.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	"github.com/matzehuels/moviegraph/pkg/config"
	"github.com/matzehuels/moviegraph/pkg/pipeline"
)

// RatingsStore is the part of the ratings store the server reads.
type RatingsStore interface {
	InteractionMap(ctx context.Context, userIDs []int) (*bipartite.InteractionMap, error)
	EgoGraph(ctx context.Context, userID, distance int, minInversePopularity float64) (*bipartite.InteractionMap, error)
	Titles(ctx context.Context, movieIDs []int) (map[string]string, error)
}

// Deps are the server's collaborators.
type Deps struct {
	Runner *pipeline.Runner
	Store  RatingsStore // optional; nil disables the /users routes
	Logger *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg      config.Config
	runner   *pipeline.Runner
	store    RatingsStore
	logger   *log.Logger
	defaults pipeline.Options
	router   chi.Router
}

// New builds a server and its router.
func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		runner:   deps.Runner,
		store:    deps.Store,
		logger:   deps.Logger,
		defaults: cfg.PipelineOptions(),
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.notFound)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(s.cfg.Server.RateLimit, time.Minute))
		r.Post("/", s.handleRender)
		r.Post("/render", s.handleRender)
		if s.store != nil {
			r.Get("/users/graph", s.handleUsersGraph)
			r.Get("/users/{id}/ego", s.handleEgoGraph)
		}
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on cfg.Server.Addr until ctx ends, then shuts
// down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
