package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Pinger checks that a backing store is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler reports whether the databases answer.
type HealthHandler struct {
	checks map[string]Pinger
	log    zerolog.Logger
}

func NewHealthHandler(checks map[string]Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

// Root answers the liveness probe on /
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Blog API is running"})
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	return c.JSON(status, map[string]any{
		"status":       state,
		"service":      "blog-api",
		"dependencies": report,
	})
}
