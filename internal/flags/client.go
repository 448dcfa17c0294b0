package flags

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"checkout-gateway/internal/client"
	"checkout-gateway/internal/config"
	"checkout-gateway/internal/metrics"
)

// maxSnapshotBytes bounds the flag payload read from the service.
const maxSnapshotBytes = 1 << 20

// evalContext is the anonymous context flags are evaluated for.
var evalContext = map[string]any{
	"kind":      "user",
	"key":       "checkout-gateway",
	"anonymous": true,
}

// Client keeps a feature-flag snapshot fresh. The bootstrap values from the
// config are always present; remote values, when a flag service is
// configured, override them.
type Client struct {
	cfg       config.FlagsConfig
	upstream  *client.UpstreamClient
	logger    *slog.Logger
	metrics   *metrics.Metrics
	bootstrap Set
	current   atomic.Pointer[Set]

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewClient creates a Client seeded with the configured bootstrap values.
// The metrics parameter is optional.
func NewClient(cfg *config.Config, uc *client.UpstreamClient, logger *slog.Logger, m *metrics.Metrics) *Client {
	c := &Client{
		cfg:       cfg.Flags,
		upstream:  uc,
		logger:    logger.With("component", "flags_client"),
		metrics:   m,
		bootstrap: merge(nil, cfg.Flags.Bootstrap),
		stop:      make(chan struct{}),
	}
	snapshot := c.bootstrap
	c.current.Store(&snapshot)
	return c
}

// Snapshot returns the current flag set.
func (c *Client) Snapshot() Set {
	return *c.current.Load()
}

// Start fetches an initial snapshot and starts polling. A failed initial
// fetch is logged, not returned: the bootstrap values keep serving.
func (c *Client) Start(ctx context.Context) error {
	if !c.cfg.Remote() {
		c.logger.Info("flag service not configured; serving bootstrap values", "flags", len(c.bootstrap))
		return nil
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial flag fetch failed; serving bootstrap values", "err", err)
	}

	interval := time.Duration(c.cfg.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	c.wg.Add(1)
	go c.poll(interval)
	return nil
}

// Stop ends polling and waits for the poller to exit.
func (c *Client) Stop(ctx context.Context) error {
	close(c.stop)
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) poll(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.Refresh(context.Background()); err != nil {
				c.logger.Warn("flag refresh failed", "err", err)
			}
		}
	}
}

// Refresh fetches the latest evaluations and publishes a new snapshot. On
// error the previous snapshot stays in place.
func (c *Client) Refresh(ctx context.Context) error {
	remote, err := c.fetch(ctx)
	if c.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.FlagRefreshes.WithLabelValues(result).Inc()
	}
	if err != nil {
		return err
	}

	snapshot := merge(c.bootstrap, remote)
	c.current.Store(&snapshot)
	c.logger.Debug("flag snapshot updated", "flags", len(snapshot))
	return nil
}

func (c *Client) fetch(ctx context.Context) (Set, error) {
	url, err := c.evalURL()
	if err != nil {
		return nil, err
	}

	resp, err := c.upstream.Send(ctx, client.UpstreamFlags, http.MethodGet, url,
		http.Header{"Accept": {"application/json"}}, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch flags: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch flags: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}

	return parseEvaluations(body)
}

func (c *Client) evalURL() (string, error) {
	ctxJSON, err := json.Marshal(evalContext)
	if err != nil {
		return "", fmt.Errorf("encode flag context: %w", err)
	}
	return fmt.Sprintf("%s/sdk/evalx/%s/contexts/%s",
		strings.TrimSuffix(c.cfg.BaseURL, "/"),
		c.cfg.ClientSideID,
		base64.RawURLEncoding.EncodeToString(ctxJSON),
	), nil
}

// parseEvaluations reads a {"key": {"value": ...}} evaluation payload. Entries
// without a "value" member are taken as bare values.
func parseEvaluations(body []byte) (Set, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("parse flags: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errors.New("parse flags: payload is not an object")
	}

	set := make(Set)
	root.ForEach(func(key, val gjson.Result) bool {
		if v := val.Get("value"); val.IsObject() && v.Exists() {
			set[key.String()] = v.Value()
		} else {
			set[key.String()] = val.Value()
		}
		return true
	})
	return set, nil
}
