package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskmaster/taskstore/docs"
	httpHandlers "github.com/taskmaster/taskstore/internal/adapters/http"
	"github.com/taskmaster/taskstore/internal/infrastructure/config"
	"github.com/taskmaster/taskstore/internal/infrastructure/logger"
	"github.com/taskmaster/taskstore/internal/infrastructure/metrics"
	"github.com/taskmaster/taskstore/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance. m may be nil when metrics are off.
func New(cfg *config.Config, taskService ports.TaskService, appLogger *logger.Logger, m *metrics.Metrics) *Server {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}

	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	healthHandler := httpHandlers.NewHealthHandler(cfg.Store.DataFile)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		metrics: m,
	}

	server.setupMiddleware()

	if cfg.Metrics.Enabled && m != nil {
		server.setupMetrics()
	}

	server.setupRoutes(taskHandler, healthHandler)

	return server
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
				"request_id", values.RequestID,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.Security.AllowedOrigins(),
		AllowHeaders: []string{echo.HeaderContentType},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	if s.config.Security.RateLimitRequests > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(s.config.Security.RateLimitRequests),
					Burst:     s.config.Security.RateLimitRequests,
					ExpiresIn: s.config.Security.RateLimitWindow,
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, httpHandlers.ErrorResponse{Message: "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, httpHandlers.ErrorResponse{Message: "rate limit exceeded"})
			},
		}))
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(taskHandler *httpHandlers.TaskHandler, healthHandler *httpHandlers.HealthHandler) {
	s.echo.GET("/health", healthHandler.Health)

	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	api := s.echo.Group("/api")

	tasks := api.Group("/tasks")
	tasks.GET("", taskHandler.GetStore)
	tasks.POST("", taskHandler.SaveStore)
	tasks.GET("/today", taskHandler.GetToday)
	tasks.POST("/today", taskHandler.ReplaceToday)
	tasks.GET("/tomorrow", taskHandler.GetTomorrow)
	tasks.POST("/tomorrow", taskHandler.ReplaceTomorrow)
	tasks.POST("/counter", taskHandler.SetCounter)

	if s.config.Server.StaticDir != "" {
		s.echo.Static("/", s.config.Server.StaticDir)
	}
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
			s.metrics.ObserveRequest(c.Request().Method, c.Path(), status, time.Since(start))

			return err
		}
	})

	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// ServeHTTP lets the server be driven directly, e.g. by httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  string
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else {
			msg = http.StatusText(code)
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, httpHandlers.ErrorResponse{Success: false, Message: msg})
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
