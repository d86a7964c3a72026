// Package api serves the receiving end of the form: it accepts posted
// submissions and exposes what was stored.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/okian/formpost/internal/adapters/http/middleware"
	"github.com/okian/formpost/internal/adapters/http/swagger"
	"github.com/okian/formpost/internal/domain/model"
	"github.com/okian/formpost/pkg/logger"
)

// AckMessage is the body of every accepted submission.
const AckMessage = "Data received Successfully"

const (
	maxBodyBytes   = 1 << 20
	corsMaxAgeSec  = 300
	requestTimeout = 30 * time.Second
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Accept stamps and queues a record. It fails on backpressure.
	Accept(ctx context.Context, rec model.SubmissionRecord) (model.Submission, error)

	Get(ctx context.Context, id string) (model.Submission, error)
	List(ctx context.Context, limit int) ([]model.Submission, error)

	GetStats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the receiver.
type Server struct {
	deps           Dependencies
	allowedOrigins []string
	validate       *validator.Validate
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins restricts cross-origin callers. Empty allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a receiver API over deps.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes(ctx context.Context) http.Handler {
	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         corsMaxAgeSec,
	}))

	submit := middleware.MetricsFunc("submit", s.handleSubmit)
	r.Post("/", submit)
	r.Post("/prod", submit)

	r.Get("/healthz", middleware.MetricsFunc("healthz", handleHealth))
	r.Get("/stats", middleware.MetricsFunc("stats", s.handleStats))

	r.Route("/submissions", func(r chi.Router) {
		r.Get("/", middleware.MetricsFunc("submissions", s.handleListSubmissions))
		r.Get("/{id}", middleware.MetricsFunc("submission", s.handleGetSubmission))
	})

	swagger.Register(ctx, r)
	return r
}
