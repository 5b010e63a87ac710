package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/campus-connect/internal/accounts"
	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/config"
	"github.com/hongminglow/campus-connect/internal/http/handlers"
	"github.com/hongminglow/campus-connect/internal/metrics"
	"github.com/hongminglow/campus-connect/internal/middleware"
	"github.com/hongminglow/campus-connect/internal/storage"
)

// Deps are the collaborators the server is built from. DenyList may be nil.
type Deps struct {
	Store    storage.Store
	DenyList auth.DenyList
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewHandler builds the routed handler without binding a listener.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	svc := accounts.NewService(deps.Store, hasher, tokens, deps.Log)
	gate := middleware.NewAuthGate(tokens, deps.DenyList, deps.Log, deps.Metrics).Handler
	dev := cfg.Development()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(deps.Log, deps.Metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		handlers.NewHealthHandler(time.Now(), deps.Store).Register(r)
		handlers.NewAuthHandler(svc, deps.DenyList, deps.Metrics, deps.Log, dev).Register(r, gate)
		handlers.NewNoticeHandler(deps.Store, deps.Log, dev).Register(r, gate)
		handlers.NewComplaintHandler(deps.Store, deps.Log, dev).Register(r, gate)
		handlers.NewEventHandler(deps.Store, deps.Log, dev).Register(r, gate)
		handlers.NewClubHandler(deps.Store, deps.Log, dev).Register(r, gate)
		handlers.NewAttendanceHandler(deps.Store, deps.Log, dev).Register(r, gate)
		handlers.NewFeedbackHandler(deps.Store, deps.Log, dev).Register(r, gate)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}
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
