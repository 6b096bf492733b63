package server

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"
	"github.com/nijaru/lexai/config"
	"github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/handlers"
	"github.com/nijaru/lexai/logger"
	"github.com/nijaru/lexai/services/summarizer"
)

// API is the JSON service exposing the summarizer.
type API struct {
	app    *fiber.App
	config *config.Config
	logger *logger.Logger
}

func NewAPI(cfg *config.Config, svc summarizer.Service, log *logger.Logger) *API {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "lexai " + cfg.Version,
	})

	setupMiddleware(app, cfg, log)
	setupRoutes(app, cfg, handlers.NewAPIHandler(svc, log))

	return &API{app: app, config: cfg, logger: log}
}

// App exposes the underlying fiber app, mainly for app.Test.
func (a *API) App() *fiber.App {
	return a.app
}

func (a *API) Listen(addr string) error {
	a.logger.WithField("addr", addr).Info("Starting API server")
	return a.app.Listen(addr)
}

// Serve accepts connections on an already bound listener.
func (a *API) Serve(ln net.Listener) error {
	a.logger.WithField("addr", ln.Addr().String()).Info("Starting API server")
	return a.app.Listener(ln)
}

func (a *API) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down API server")
	return a.app.ShutdownWithContext(ctx)
}

func setupRoutes(app *fiber.App, cfg *config.Config, h *handlers.APIHandler) {
	wrap := func(handler fiber.Handler) fiber.Handler {
		if cfg.Middleware.EnableTimeout {
			return timeout.NewWithContext(handler, cfg.RequestTimeout)
		}
		return handler
	}

	api := app.Group("/api")
	api.Post("/video-info", wrap(h.VideoInfo))
	api.Post("/summarize", wrap(h.Summarize))
	api.Post("/answer", wrap(h.Answer))

	app.Get("/health", handlers.HealthCheck(cfg.Version, time.Now()))
}

func setupMiddleware(app *fiber.App, cfg *config.Config, log *logger.Logger) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: fiber.HeaderXRequestID,
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(log.AccessLogConfig()))
	}

	if cfg.Middleware.EnableCORS {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableRateLimit && cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return errors.RateLimited("server.limiter")
			},
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}
}
