package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gastwerk/ragcache/auth"
	"github.com/gastwerk/ragcache/cache"
	"github.com/gastwerk/ragcache/health"
	"github.com/gastwerk/ragcache/observe"
	"github.com/gastwerk/ragcache/rag"
	"github.com/gastwerk/ragcache/resilience"
)

// Answerer resolves a query to a response, normally through the cache
// coordinator.
type Answerer interface {
	AnswerWithTTL(ctx context.Context, query string, qctx rag.Context, ttl time.Duration) (*rag.Response, error)
}

// Prober runs the canned retrieval probes behind the debug endpoint.
type Prober interface {
	Probe(ctx context.Context) ([]rag.DebugResult, error)
}

// Config wires the server's collaborators.
type Config struct {
	// Answerer handles /api/ask. Required.
	Answerer Answerer

	// Maintenance backs the status and cache maintenance endpoints.
	// Required.
	Maintenance *cache.Maintenance

	// Prober backs /api/debug. Optional; nil returns 404 there.
	Prober Prober

	// Health is the aggregator behind /healthz, /readyz, /health.
	// Optional; nil registers an empty aggregator.
	Health *health.Aggregator

	// Auth guards the API. Optional; nil leaves all endpoints open.
	Auth *auth.Middleware

	// Logger is optional; nil means no-op.
	Logger observe.Logger

	// RequestTimeout bounds one answer request. Default: 60s
	RequestTimeout time.Duration

	// RateLimiter throttles the answer endpoint. Optional.
	RateLimiter *resilience.RateLimiter
}

// Server is the HTTP front of the service.
type Server struct {
	answerer    Answerer
	maintenance *cache.Maintenance
	prober      Prober
	agg         *health.Aggregator
	authmw      *auth.Middleware
	log         observe.Logger
	timeout     *resilience.Timeout
	limiter     *resilience.RateLimiter
}

// NewServer creates a Server from the config, applying defaults.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNopLogger()
	}
	if cfg.Health == nil {
		cfg.Health = health.NewAggregator()
	}

	return &Server{
		answerer:    cfg.Answerer,
		maintenance: cfg.Maintenance,
		prober:      cfg.Prober,
		agg:         cfg.Health,
		authmw:      cfg.Auth,
		log:         cfg.Logger,
		timeout:     resilience.NewTimeout(resilience.TimeoutConfig{Timeout: cfg.RequestTimeout}),
		limiter:     cfg.RateLimiter,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/ask", s.protect(s.withRateLimit(http.HandlerFunc(s.handleAsk))))
	mux.Handle("GET /api/status", s.protect(http.HandlerFunc(s.handleStatus)))
	mux.Handle("GET /api/debug", s.protectAdmin(http.HandlerFunc(s.handleDebug)))
	mux.Handle("POST /api/cache/invalidate", s.protectAdmin(http.HandlerFunc(s.handleInvalidate)))
	mux.Handle("POST /api/cache/clear", s.protectAdmin(http.HandlerFunc(s.handleClear)))

	health.RegisterHandlers(mux, s.agg)

	return s.withLogging(mux)
}

// protect requires any authenticated identity when auth is configured.
func (s *Server) protect(next http.Handler) http.Handler {
	if s.authmw == nil {
		return next
	}
	return s.authmw.Require(next)
}

// protectAdmin requires the admin role when auth is configured.
func (s *Server) protectAdmin(next http.Handler) http.Handler {
	if s.authmw == nil {
		return next
	}
	return s.authmw.RequireRole(auth.RoleAdmin, next)
}
