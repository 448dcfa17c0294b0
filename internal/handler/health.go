package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"checkout-gateway/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status returns gateway status information.
func (h *HealthHandler) Status(c echo.Context) error {
	d := h.cfg.Domains()
	flagSource := "bootstrap"
	if h.cfg.Flags.Remote() {
		flagSource = "remote"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":      "ok",
		"version":     string(h.version),
		"environment": h.cfg.Environment,
		"api_url":     d.API,
		"web_url":     d.Web,
		"events_url":  d.Events,
		"flags":       flagSource,
	})
}
