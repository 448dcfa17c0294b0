// Package handler wires the HTTP surface of the gateway.
package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance. Browser
// routes live under server.base_path; health endpoints stay at the root.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, proxy *ProxyHandler, sess *SessionHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	api := e.Group(cfg.Server.BasePath + "/api")
	api.POST("/graphql", proxy.GraphQL)
	api.GET("/graphql", proxy.GraphQLIntrospect)
	api.POST("/login", proxy.Login)
	api.POST("/braintree-token", proxy.BraintreeToken)
	api.POST("/vt-events", proxy.Events)
	api.GET("/session", sess.Get)
}

// RegisterMetrics exposes the Prometheus registry when metrics are enabled.
func RegisterMetrics(e *echo.Echo, cfg *config.Config, m *metrics.Metrics) {
	if m == nil || !cfg.Metrics.Enabled {
		return
	}
	e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}
