package web

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/nijaru/lexai/config"
	"github.com/nijaru/lexai/middleware"
	"github.com/nijaru/lexai/services/summarizer"
	"github.com/nijaru/lexai/session"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html static/*
var assets embed.FS

const (
	pageTitle   = "LexAI"
	pageTagline = "Transform lengthy YouTube videos into concise, insightful summaries in seconds."
	pageFooter  = "Powered by LLama3."
)

// Server renders the browser UI and forwards work to a summarizer backend.
type Server struct {
	service   summarizer.Service
	sessions  *session.Store
	config    *config.Config
	logger    logrus.FieldLogger
	templates *template.Template
	server    *http.Server
	startTime time.Time
}

type ServerOption func(*Server)

func WithLogger(logger logrus.FieldLogger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(cfg *config.Config, svc summarizer.Service, sessions *session.Store, opts ...ServerOption) *Server {
	s := &Server{
		service:   svc,
		sessions:  sessions,
		config:    cfg,
		logger:    logrus.StandardLogger(),
		templates: template.Must(template.ParseFS(assets, "templates/*.html")),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.UIPort,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port":    s.config.UIPort,
		"backend": s.config.UI.Backend,
	}).Info("Starting UI server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down UI server")
	return s.server.Shutdown(ctx)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.middleware(s.routes())
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /video", s.handleVideo)
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("GET /summary/stream", s.handleSummaryStream)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /health", s.handleHealth)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return mux
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
	}

	if s.config.Middleware.EnableRateLimit && s.config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
		middlewares = append(middlewares, limiter.Middleware)
	}

	return middleware.Chain(handler, middlewares...)
}
