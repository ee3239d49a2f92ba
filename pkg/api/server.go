// Package api serves the rail-fence cipher over HTTP.
//
// Routes:
//
//	GET  /health
//	POST /api/text/encrypt    {"text": "...", "rails": 3}
//	POST /api/text/decrypt    {"text": "...", "rails": 3}
//	POST /api/image/encrypt   {"imageData": "data:image/png;base64,...", "rails": 3}
//	POST /api/image/decrypt   {"imageData": "data:image/png;base64,...", "rails": 3}
//	POST /api/visualize       {"text": "...", "rails": 3, "format": "html"}
//
// Successful responses carry "success": true. Failures are
// {"success": false, "error": "...", "code": "INVALID_RAILS"} with a 4xx or
// 5xx status derived from the error code.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/railfence/pkg/pipeline"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Config configures the server.
type Config struct {
	Addr           string
	AllowedOrigins []string
	MaxBodyBytes   int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// DefaultRails is used when a request omits "rails".
	DefaultRails int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:           ":5000",
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   32 << 20,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		DefaultRails:   pipeline.DefaultRails,
	}
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New builds a server around runner. Zero config fields take their defaults.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.DefaultRails == 0 {
		cfg.DefaultRails = def.DefaultRails
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger.WithPrefix("api"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(cors(s.cfg.AllowedOrigins))
	r.Use(limitBody(s.cfg.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, errNotFound(r))
	})
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/text/encrypt", s.handleText(pipeline.OpEncode))
		r.Post("/text/decrypt", s.handleText(pipeline.OpDecode))
		r.Post("/image/encrypt", s.handleImage(pipeline.OpEncode))
		r.Post("/image/decrypt", s.handleImage(pipeline.OpDecode))
		r.Post("/visualize", s.handleVisualize)
	})
	return r
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.Run] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
