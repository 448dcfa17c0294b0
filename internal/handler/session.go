package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"checkout-gateway/internal/cookies"
	"checkout-gateway/internal/flags"
	"checkout-gateway/internal/session"
)

// FlagSource provides the current feature-flag snapshot.
type FlagSource interface {
	Snapshot() flags.Set
}

// SessionHandler serves the derived checkout session.
type SessionHandler struct {
	flags  FlagSource
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(fs FlagSource, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		flags:  fs,
		logger: logger.With("component", "session_handler"),
	}
}

type sessionResponse struct {
	session.Params
	ShouldUsePromoCode bool   `json:"shouldUsePromoCode"`
	UserID             string `json:"userId,omitempty"`
}

// Get derives the session from the query string, the flag snapshot, and the
// auth cookie. A missing or undecodable cookie leaves the user ID empty.
func (h *SessionHandler) Get(c echo.Context) error {
	p := session.Derive(c.QueryParams(), h.flags.Snapshot())
	resp := sessionResponse{
		Params:             p,
		ShouldUsePromoCode: p.ShouldUsePromoCode(),
	}

	if ck, err := c.Cookie(cookies.AuthCookieName); err == nil && ck.Value != "" {
		id, err := session.UserIDFromToken(ck.Value)
		if err != nil {
			h.logger.Debug("auth cookie not decodable", "err", err)
		}
		resp.UserID = id
	}

	return c.JSON(http.StatusOK, resp)
}
