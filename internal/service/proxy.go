// Package service implements the forwarding logic of the proxy routes.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"checkout-gateway/internal/client"
	"checkout-gateway/internal/config"
	"checkout-gateway/internal/cookies"
	"checkout-gateway/internal/model"
)

// Upstream paths, relative to the resolved base URLs.
const (
	graphQLPath      = "/graphql"
	loginPath        = "/v1/users/login"
	paymentTokenPath = "/api/v3/payment/token"
	interactionPath  = "/v2/pages/interaction"
)

// maxResponseBytes bounds how much of an upstream body is buffered.
const maxResponseBytes = 10 * 1024 * 1024

// snippetLen is how many characters of a non-JSON body are kept for diagnostics.
const snippetLen = 200

// HeaderApplicationID is the only inbound header the event route forwards.
const HeaderApplicationID = "X-Vt-Applicationid"

// ErrInvalidRequestBody is returned when the browser sent a body that is not valid JSON.
var ErrInvalidRequestBody = errors.New("request body is not valid JSON")

// ErrMalformedResponse is returned when an upstream body claims or is expected
// to be JSON but does not parse.
var ErrMalformedResponse = errors.New("upstream response is not valid JSON")

// graphQLForwardHeaders are copied from the browser request when non-empty.
var graphQLForwardHeaders = []string{
	"Cookie",
	"User-Agent",
	"X-Forwarded-For",
	"X-Real-Ip",
}

// InvalidResponseError reports an upstream response whose content type is not JSON.
type InvalidResponseError struct {
	StatusCode  int
	ContentType string
	Snippet     string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("expected JSON response but got %q (status %d): %s", e.ContentType, e.StatusCode, e.Snippet)
}

// EventRejectedError reports a non-2xx answer from the analytics endpoint.
type EventRejectedError struct {
	StatusCode int
	Details    string
}

func (e *EventRejectedError) Error() string {
	return fmt.Sprintf("event rejected with status %d", e.StatusCode)
}

// ProxyService forwards browser requests to the API, web, and events upstreams.
type ProxyService struct {
	client  *client.UpstreamClient
	logger  *slog.Logger
	domains config.Domains
}

// NewProxyService creates a ProxyService for the resolved upstream domains.
func NewProxyService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger) (*ProxyService, error) {
	d := cfg.Domains()
	for name, raw := range map[string]string{"api": d.API, "web": d.Web, "events": d.Events} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s base url: %w", name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%s base url %q must be absolute", name, raw)
		}
	}

	return &ProxyService{
		client:  c,
		logger:  logger.With("component", "proxy_service"),
		domains: d,
	}, nil
}

// GraphQL forwards a GraphQL POST to the API. The request body is
// re-serialized by normalizeJSON; the response JSON and its cookies are relayed unchanged.
func (s *ProxyService) GraphQL(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	body, err := normalizeJSON(pr.Body)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("forwarding graphql request",
		"operation", gjson.GetBytes(body, "operationName").String(),
	)

	resp, err := s.client.Send(detach(pr.Ctx), client.UpstreamAPI, http.MethodPost,
		joinURL(s.domains.API, graphQLPath), graphQLHeaders(pr.Header), body)
	if err != nil {
		return nil, fmt.Errorf("forward graphql: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := readJSONResponse(resp)
	if err != nil {
		return nil, err
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Body:       raw,
		SetCookies: cookies.Lines(resp.Header),
	}, nil
}

// GraphQLIntrospect forwards a GraphQL GET. No cookies and no body are sent.
func (s *ProxyService) GraphQLIntrospect(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	target := joinURL(s.domains.API, graphQLPath)
	if len(pr.Query) > 0 {
		target += "?" + pr.Query.Encode()
	}

	resp, err := s.client.Send(detach(pr.Ctx), client.UpstreamAPI, http.MethodGet, target,
		http.Header{"Content-Type": {"application/json"}}, nil)
	if err != nil {
		return nil, fmt.Errorf("forward graphql introspection: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := readJSONResponse(resp)
	if err != nil {
		return nil, err
	}
	return &model.ProxyResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}

// Login forwards credentials to the API. Status and body are relayed
// verbatim, including authentication failures.
func (s *ProxyService) Login(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	var creds model.LoginRequest
	if err := json.Unmarshal(pr.Body, &creds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err)
	}
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("encode login: %w", err)
	}

	resp, err := s.client.Send(detach(pr.Ctx), client.UpstreamAPI, http.MethodPost,
		joinURL(s.domains.API, loginPath), http.Header{"Content-Type": {"application/json"}}, body)
	if err != nil {
		return nil, fmt.Errorf("forward login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}
	if !json.Valid(raw) {
		return nil, ErrMalformedResponse
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Body:       raw,
		SetCookies: cookies.Lines(resp.Header),
	}, nil
}

// PaymentToken requests a payment client token from the web upstream. Only
// the browser's Cookie header is forwarded; response cookies are dropped.
func (s *ProxyService) PaymentToken(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	header := http.Header{"Content-Type": {"application/json"}}
	if v := pr.Header.Get("Cookie"); v != "" {
		header.Set("Cookie", v)
	}

	resp, err := s.client.Send(detach(pr.Ctx), client.UpstreamWeb, http.MethodPost,
		joinURL(s.domains.Web, paymentTokenPath), header, pr.Body)
	if err != nil {
		return nil, fmt.Errorf("forward payment token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := readJSONResponse(resp)
	if err != nil {
		return nil, err
	}
	return &model.ProxyResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}

// TrackEvent forwards a page-interaction event to the analytics upstream.
// A 2xx answer with an empty or non-JSON body is reported as {}. A 2xx status
// that cannot carry a body becomes 200 so the {} reaches the browser.
func (s *ProxyService) TrackEvent(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	body, err := normalizeJSON(pr.Body)
	if err != nil {
		return nil, err
	}

	header := http.Header{"Content-Type": {"application/json"}}
	if v := pr.Header.Get(HeaderApplicationID); v != "" {
		header.Set(HeaderApplicationID, v)
	}

	resp, err := s.client.Send(detach(pr.Ctx), client.UpstreamEvents, http.MethodPost,
		joinURL(s.domains.Events, interactionPath), header, body)
	if err != nil {
		return nil, fmt.Errorf("forward event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details, err := readBody(resp.Body)
		if err != nil {
			details = nil
		}
		return nil, &EventRejectedError{StatusCode: resp.StatusCode, Details: string(details)}
	}

	status := resp.StatusCode
	if !model.BodyAllowed(status) {
		status = http.StatusOK
	}
	raw, err := readBody(resp.Body)
	if err != nil || !json.Valid(raw) {
		raw = []byte("{}")
	}
	return &model.ProxyResponse{StatusCode: status, Body: raw}, nil
}

// graphQLHeaders builds the upstream header set for a GraphQL POST. Empty
// inbound values are omitted rather than forwarded empty.
func graphQLHeaders(src http.Header) http.Header {
	dst := http.Header{"Content-Type": {"application/json"}}
	for _, key := range graphQLForwardHeaders {
		if v := src.Get(key); v != "" {
			dst.Set(key, v)
		}
	}
	return dst
}

// readJSONResponse reads resp's body, requiring a JSON content type.
func readJSONResponse(resp *model.UpstreamResponse) ([]byte, error) {
	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		return nil, &InvalidResponseError{
			StatusCode:  resp.StatusCode,
			ContentType: ct,
			Snippet:     truncate(string(raw), snippetLen),
		}
	}
	if !json.Valid(raw) {
		return nil, ErrMalformedResponse
	}
	return raw, nil
}

func readBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxResponseBytes))
}

// detach keeps request-scoped values but drops the browser's cancellation:
// an upstream call runs to completion or to the client timeout.
func detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
