// Package http provides the HTTP API for planforged.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/forgelabs/planforge/internal/consistency"
	"github.com/forgelabs/planforge/internal/evaluation"
	"github.com/forgelabs/planforge/internal/plan"
	"github.com/forgelabs/planforge/internal/refine"
)

// Server provides HTTP endpoints for planforged.
type Server struct {
	echo      *echo.Echo
	evaluator evaluation.Service
	loop      *refine.Loop
	logger    *zap.Logger
	config    *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// ExpectedPhases is the default phase count for validation
	// requests that don't override it.
	ExpectedPhases int
}

// NewServer creates a new HTTP server. The refine loop may be nil, in
// which case POST /api/v1/refine responds 501.
func NewServer(evaluator evaluation.Service, loop *refine.Loop, logger *zap.Logger, cfg *Config) (*Server, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluation service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8640,
		}
	}
	if cfg.ExpectedPhases <= 0 {
		cfg.ExpectedPhases = consistency.DefaultExpectedPhases
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())

	s := &Server{
		echo:      e,
		evaluator: evaluator,
		loop:      loop,
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/validate", s.handleValidate)
	v1.POST("/evaluate", s.handleEvaluate)
	v1.POST("/refine", s.handleRefine)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleValidate runs only the structural validator against a plan.
func (s *Server) handleValidate(c echo.Context) error {
	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid validate request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Plan) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "plan field is required")
	}

	p, err := plan.Decode(req.Plan)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid plan document: %v", err))
	}

	expected := req.ExpectedPhases
	if expected <= 0 {
		expected = s.config.ExpectedPhases
	}

	report := consistency.Validate(p, expected)

	return c.JSON(http.StatusOK, ValidateResponse{
		Passed:  report.Passed(),
		Summary: report.Summary(),
		Issues:  report.Issues,
	})
}

// handleEvaluate runs the full evaluation pipeline against a plan.
func (s *Server) handleEvaluate(c echo.Context) error {
	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid evaluate request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Plan) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "plan field is required")
	}

	p, err := plan.Decode(req.Plan)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid plan document: %v", err))
	}

	result, err := s.evaluator.Evaluate(c.Request().Context(), p, req.Profile)
	if err != nil {
		s.logger.Error("evaluation failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "evaluation failed")
	}

	return c.JSON(http.StatusOK, EvaluateResponse{Result: result})
}

// handleRefine runs the draft-evaluate-revise loop for an idea.
func (s *Server) handleRefine(c echo.Context) error {
	if s.loop == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "refinement is disabled: no generator configured")
	}

	var req RefineRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid refine request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Idea == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "idea field is required")
	}

	outcome, err := s.loop.Run(c.Request().Context(), req.Idea, req.Profile)
	if err != nil {
		// An exhausted budget still carries the last draft and its
		// verdict; report it as a normal response.
		if outcome != nil && outcome.Result != nil {
			return c.JSON(http.StatusOK, RefineResponse{Outcome: outcome})
		}
		s.logger.Error("refinement failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "refinement failed")
	}

	return c.JSON(http.StatusOK, RefineResponse{Outcome: outcome})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
