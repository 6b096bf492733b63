package main

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/lexai/apiclient"
	"github.com/nijaru/lexai/config"
	"github.com/nijaru/lexai/llm"
	"github.com/nijaru/lexai/logger"
	"github.com/nijaru/lexai/server"
	"github.com/nijaru/lexai/services/summarizer"
	"github.com/nijaru/lexai/session"
	"github.com/nijaru/lexai/web"
	"github.com/nijaru/lexai/youtube"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type runnable struct {
	name     string
	start    func() error
	shutdown func(context.Context) error
}

func runAPI(ctx context.Context, f flags) error {
	cfg, log, err := setup(f)
	if err != nil {
		return err
	}
	defer log.Close()

	svc, err := newLocalService(cfg, log)
	if err != nil {
		return err
	}

	api := server.NewAPI(cfg, svc, log)
	return serve(ctx, cfg, log, runnable{
		name:     "api",
		start:    func() error { return api.Listen(":" + cfg.APIPort) },
		shutdown: api.Shutdown,
	})
}

func runUI(ctx context.Context, f flags) error {
	cfg, log, err := setup(f)
	if err != nil {
		return err
	}
	defer log.Close()

	svc, err := newBackend(cfg, log)
	if err != nil {
		return err
	}

	sessions := session.NewStore(cfg.UI.SessionTTL, session.WithLogger(log))
	defer sessions.Close()

	ui := web.NewServer(cfg, svc, sessions, web.WithLogger(log))
	return serve(ctx, cfg, log, runnable{name: "ui", start: ui.Start, shutdown: ui.Shutdown})
}

// runAll serves the API on a background listener and points the UI at it over HTTP.
func runAll(ctx context.Context, f flags) error {
	cfg, log, err := setup(f)
	if err != nil {
		return err
	}
	defer log.Close()

	svc, err := newLocalService(cfg, log)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		return errors.Wrap(err, "api listener")
	}

	sessions := session.NewStore(cfg.UI.SessionTTL, session.WithLogger(log))
	defer sessions.Close()
	api, ui := newCombined(cfg, svc, sessions, log)

	return serve(ctx, cfg, log,
		runnable{
			name:     "api",
			start:    func() error { return api.Serve(ln) },
			shutdown: api.Shutdown,
		},
		runnable{name: "ui", start: ui.Start, shutdown: ui.Shutdown},
	)
}

// newCombined wires the UI to the API over loopback. Every UI request reaches
// the API from the same address, so the API's per-IP limiter is turned off and
// the UI's own limiter guards the process.
func newCombined(cfg *config.Config, svc summarizer.Service, sessions *session.Store, log *logger.Logger) (*server.API, *web.Server) {
	apiCfg := *cfg
	apiCfg.Middleware.EnableRateLimit = false
	api := server.NewAPI(&apiCfg, svc, log)

	cfg.UI.Backend = config.BackendRemote
	cfg.UI.APIURL = "http://localhost:" + cfg.APIPort
	backend := apiclient.New(cfg.UI.APIURL, cfg.RequestTimeout, apiclient.WithLogger(log))

	return api, web.NewServer(cfg, backend, sessions, web.WithLogger(log))
}

func setup(f flags) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}

	if f.apiPort != "" {
		cfg.APIPort = f.apiPort
	}
	if f.uiPort != "" {
		cfg.UIPort = f.uiPort
	}
	if f.backend != "" {
		cfg.UI.Backend = f.backend
	}
	if f.apiURL != "" {
		cfg.UI.APIURL = f.apiURL
	}
	if version != "dev" {
		cfg.Version = version
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}

	log, err := logger.NewLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize logger")
	}

	log.WithFields(logrus.Fields{
		"env":     cfg.Env,
		"version": cfg.Version,
	}).Info("Configuration loaded")
	return cfg, log, nil
}

func newLocalService(cfg *config.Config, log *logger.Logger) (summarizer.Service, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}

	videos := youtube.NewClient(youtube.Config{
		OEmbedURL:    cfg.YouTube.OEmbedURL,
		ThumbnailURL: cfg.YouTube.ThumbnailURL,
		Languages:    cfg.YouTube.Languages,
		HTTPTimeout:  cfg.YouTube.HTTPTimeout,
	}, youtube.WithLogger(log))

	model := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, llm.WithLogger(log))

	return summarizer.NewService(videos, model, summarizer.WithLogger(log)), nil
}

func newBackend(cfg *config.Config, log *logger.Logger) (summarizer.Service, error) {
	if cfg.UI.Backend == config.BackendRemote {
		log.WithField("api_url", cfg.UI.APIURL).Info("Using remote API backend")
		return apiclient.New(cfg.UI.APIURL, cfg.RequestTimeout, apiclient.WithLogger(log)), nil
	}
	return newLocalService(cfg, log)
}

// serve starts every runnable and blocks until a signal arrives or one of
// them fails, then shuts them all down within the configured timeout.
func serve(ctx context.Context, cfg *config.Config, log *logger.Logger, runnables ...runnable) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, len(runnables))
	for _, r := range runnables {
		go func(r runnable) {
			if err := r.start(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errc <- errors.Wrapf(err, "%s server", r.name)
				return
			}
			errc <- nil
		}(r)
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errc:
		if runErr != nil {
			log.WithError(runErr).Error("Server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	for i := len(runnables) - 1; i >= 0; i-- {
		r := runnables[i]
		if err := r.shutdown(shutdownCtx); err != nil {
			log.WithError(err).WithField("server", r.name).Error("Shutdown error")
		}
	}

	log.Info("Shutdown complete")
	return runErr
}
