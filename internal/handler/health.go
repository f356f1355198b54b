package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Nishank-123/biller/internal/lib/pdf"
	"github.com/Nishank-123/biller/internal/middleware"
	"github.com/Nishank-123/biller/internal/server"
	"github.com/labstack/echo/v4"
)

const defaultHealthTimeout = 5 * time.Second

// HealthCheck tests one dependency. A failing required check turns the
// overall status unhealthy (503); an optional one is only reported.
type HealthCheck struct {
	Name     string
	Required bool
	Run      func(ctx context.Context) error
}

type HealthHandler struct {
	Handler
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler builds the checks enabled in observability.health_checks
// for the dependencies this process actually has.
func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{
		Handler: NewHandler(s),
		timeout: defaultHealthTimeout,
	}

	obs := s.Config.Observability
	if obs != nil {
		if !obs.HealthChecks.Enabled {
			return h
		}
		if obs.HealthChecks.Timeout > 0 {
			h.timeout = obs.HealthChecks.Timeout
		}
	}
	include := func(name string) bool {
		return obs == nil || obs.HealthChecks.Includes(name)
	}

	if s.DB != nil && include("database") {
		h.checks = append(h.checks, HealthCheck{
			Name:     "database",
			Required: true,
			Run: func(ctx context.Context) error {
				return s.DB.Pool.Ping(ctx)
			},
		})
	}

	if s.Redis != nil && include("redis") {
		h.checks = append(h.checks, HealthCheck{
			Name: "redis",
			Run: func(ctx context.Context) error {
				return s.Redis.Ping(ctx).Err()
			},
		})
	}

	if include("storage") {
		dir := s.Config.Storage.PDFDir
		h.checks = append(h.checks, HealthCheck{
			Name:     "storage",
			Required: true,
			Run: func(ctx context.Context) error {
				store, err := pdf.NewStore(dir)
				if err != nil {
					return err
				}
				return store.Check()
			},
		})
	}

	return h
}

// WithChecks replaces the dependency checks.
func (h *HealthHandler) WithChecks(checks ...HealthCheck) *HealthHandler {
	h.checks = checks
	return h
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{}, len(h.checks))
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true
	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check.Run(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			checks[check.Name] = map[string]interface{}{
				"status":        "unhealthy",
				"response_time": elapsed.String(),
				"error":         err.Error(),
			}
			if check.Required {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", check.Name).
				Dur("response_time", elapsed).
				Msg("health check failed")

			h.recordFailure(check.Name, elapsed, err)
			continue
		}

		checks[check.Name] = map[string]interface{}{
			"status":        "healthy",
			"response_time": elapsed.String(),
		}

		logger.Debug().
			Str("check", check.Name).
			Dur("response_time", elapsed).
			Msg("health check passed")
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	h.server.LoggerService.GetApplication().RecordCustomEvent(
		"HealthCheckError",
		map[string]interface{}{
			"check_type":       check,
			"operation":        "health_check",
			"error_type":       check + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		},
	)
}
