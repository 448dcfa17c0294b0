package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"checkout-gateway/internal/cookies"
	"checkout-gateway/internal/model"
	"checkout-gateway/internal/service"
)

// Fixed browser-facing failure messages. Underlying errors are logged only.
const (
	msgGraphQLFailed = "Failed to proxy GraphQL request"
	msgLoginFailed   = "Failed to authenticate"
	msgPaymentFailed = "Failed to fetch payment token"
	msgEventFailed   = "Failed to forward event"
)

// GraphQL error codes.
const (
	codeProxyError      = "PROXY_ERROR"
	codeInvalidResponse = "INVALID_RESPONSE"
)

// ProxyHandler serves the same-origin proxy routes.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// GraphQL proxies a GraphQL POST to the API.
func (h *ProxyHandler) GraphQL(c echo.Context) error {
	resp, err := h.forward(c, h.service.GraphQL)
	if err != nil {
		var inv *service.InvalidResponseError
		if errors.As(err, &inv) {
			h.logger.Warn("graphql upstream returned non-JSON",
				"status", inv.StatusCode,
				"content_type", inv.ContentType,
			)
			return writeJSON(c, inv.StatusCode, model.NewGraphQLError(
				"Invalid response from API: "+inv.Snippet, codeInvalidResponse))
		}
		h.logError(c, err)
		return c.JSON(http.StatusInternalServerError, model.NewGraphQLError(msgGraphQLFailed, codeProxyError))
	}
	return h.relay(c, resp)
}

// GraphQLIntrospect proxies a GraphQL GET (introspection) to the API.
func (h *ProxyHandler) GraphQLIntrospect(c echo.Context) error {
	resp, err := h.forward(c, h.service.GraphQLIntrospect)
	if err != nil {
		h.logError(c, err)
		return c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: msgGraphQLFailed})
	}
	return h.relay(c, resp)
}

// Login proxies a credential login to the API.
func (h *ProxyHandler) Login(c echo.Context) error {
	resp, err := h.forward(c, h.service.Login)
	if err != nil {
		h.logError(c, err)
		return c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: msgLoginFailed})
	}
	return h.relay(c, resp)
}

// BraintreeToken proxies a payment client-token request to the web upstream.
func (h *ProxyHandler) BraintreeToken(c echo.Context) error {
	resp, err := h.forward(c, h.service.PaymentToken)
	if err != nil {
		h.logError(c, err)
		msg := msgPaymentFailed
		var inv *service.InvalidResponseError
		if errors.As(err, &inv) {
			msg = inv.Error()
		}
		return c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: msg})
	}
	return h.relay(c, resp)
}

// Events proxies an analytics event to the ingestion upstream.
func (h *ProxyHandler) Events(c echo.Context) error {
	resp, err := h.forward(c, h.service.TrackEvent)
	if err != nil {
		var rej *service.EventRejectedError
		if errors.As(err, &rej) {
			h.logger.Warn("event rejected upstream", "status", rej.StatusCode)
			return writeJSON(c, rej.StatusCode, model.ErrorResponse{Error: msgEventFailed, Details: &rej.Details})
		}
		h.logError(c, err)
		return c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: msgEventFailed})
	}
	return h.relay(c, resp)
}

// forward reads the browser request and hands it to fn.
func (h *ProxyHandler) forward(c echo.Context, fn func(*model.ProxyRequest) (*model.ProxyResponse, error)) (*model.ProxyResponse, error) {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	return fn(&model.ProxyRequest{
		Ctx:    req.Context(),
		Query:  req.URL.Query(),
		Header: req.Header,
		Body:   body,
	})
}

// relay writes an upstream JSON response and its forwarded cookies.
func (h *ProxyHandler) relay(c echo.Context, resp *model.ProxyResponse) error {
	cookies.Forward(c.Response().Header(), resp.SetCookies)
	if !model.BodyAllowed(resp.StatusCode) {
		return c.NoContent(resp.StatusCode)
	}
	return c.Blob(resp.StatusCode, echo.MIMEApplicationJSON, resp.Body)
}

// writeJSON answers at an upstream-chosen status, dropping the body when the
// status cannot carry one.
func writeJSON(c echo.Context, status int, v any) error {
	if !model.BodyAllowed(status) {
		return c.NoContent(status)
	}
	return c.JSON(status, v)
}

func (h *ProxyHandler) logError(c echo.Context, err error) {
	h.logger.Error("proxy error",
		"err", err,
		"path", c.Request().URL.Path,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
	)
}
