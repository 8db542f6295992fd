// Package mockapi is an in-memory stand-in for the marketplace REST backend.
// It serves every endpoint the domain services call, answers lists in
// rotating envelopes and refuses PDF exports, so the client's normalizer and
// CSV fallback are exercised end to end.
package mockapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the mock server / Options du serveur mock
type Options struct {
	Store          *Store // Nil means a fresh empty store
	Metrics        ServerMetrics
	Gatherer       prometheus.Gatherer // Backs /metrics when set
	RequireAuth    bool
	JWTSecret      string
	TokenTTL       time.Duration
	RateLimit      config.RateLimiterConfig
	TrustedProxies []string
	Timeout        time.Duration
	Version        string
}

// Server holds the store and the per-resource handlers.
type Server struct {
	opts     Options
	store    *Store
	limiter  *RateLimiter
	handlers []*resourceHandler
	started  time.Time
	stop     context.CancelFunc
}

// NewServer builds the mock; ctx bounds the rate limiter's cleanup goroutine.
func NewServer(ctx context.Context, opts Options) *Server {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}

	s := &Server{opts: opts, store: opts.Store, started: time.Now()}
	ctx, s.stop = context.WithCancel(ctx)
	if opts.RateLimit.Enabled {
		s.limiter = NewRateLimiter(ctx, opts.RateLimit.RPS, opts.RateLimit.Burst)
	}
	for i, def := range resourceDefs() {
		s.handlers = append(s.handlers, &resourceHandler{def: def, envelope: envelopeFor(i), store: s.store})
	}
	return s
}

// Store exposes the backing store, mainly for seeding and tests.
func (s *Server) Store() *Store { return s.store }

// Stop ends the rate limiter sweep / Arrête le nettoyage du limiteur
func (s *Server) Stop() {
	s.stop()
}

// Routes returns the HTTP handler: /health, /metrics and the REST API under /api.
// Routes retourne le handler HTTP
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(trace)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", s.health)
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(middleware.Timeout(s.opts.Timeout))

		r.Post("/auth/token", s.issueToken)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			for _, h := range s.handlers {
				r.Route("/"+h.def.Name, h.routes)
			}
			r.Get("/produits/{uuid}/stock", s.stock)
			r.Get("/dons/{uuid}", s.listing("dons", "don"))
			r.Get("/echanges/{uuid}", s.listing("echanges", "echange"))
		})
	})

	for _, h := range s.handlers {
		slog.Debug("mockapi: route", "resource", h.def.Name, "envelope", h.envelope)
	}
	return r
}
