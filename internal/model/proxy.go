// Package model defines shared types for the checkout gateway.
package model

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// ProxyRequest is a browser request to be forwarded upstream. Body is fully
// read; the inbound body limit keeps it bounded.
type ProxyRequest struct {
	Ctx    context.Context
	Query  url.Values
	Header http.Header
	Body   []byte
}

// UpstreamResponse is a raw upstream response whose body is still unread.
// The receiver is responsible for closing Body.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// ProxyResponse is an upstream response after it has been fully read.
// Body holds the bytes to relay to the browser; SetCookies the upstream
// Set-Cookie lines the route chose to forward (nil when it forwards none).
type ProxyResponse struct {
	StatusCode int
	Body       []byte
	SetCookies []string
}

// BodyAllowed reports whether a response with status may carry a body.
func BodyAllowed(status int) bool {
	switch {
	case status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Extensions GraphQLErrorExtensions `json:"extensions"`
}

// GraphQLErrorExtensions carries the machine-readable error code.
type GraphQLErrorExtensions struct {
	Code string `json:"code"`
}

// GraphQLErrorResponse is an error envelope shaped like a GraphQL response.
type GraphQLErrorResponse struct {
	Errors []GraphQLError `json:"errors"`
}

// NewGraphQLError builds a single-error GraphQL envelope.
func NewGraphQLError(message, code string) GraphQLErrorResponse {
	return GraphQLErrorResponse{
		Errors: []GraphQLError{{
			Message:    message,
			Extensions: GraphQLErrorExtensions{Code: code},
		}},
	}
}

// ErrorResponse is the plain error envelope used by the REST proxy routes.
type ErrorResponse struct {
	Error   string  `json:"error"`
	Details *string `json:"details,omitempty"`
}

// LoginRequest is the browser's login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
