package metrics

import (
	"testing"
)

func TestNew_GathersMetrics(t *testing.T) {
	m := New()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	// Should include at least Go runtime and process collectors.
	if len(families) == 0 {
		t.Fatal("expected non-empty metric families from Gather()")
	}

	m.RequestsTotal.WithLabelValues("POST", "200", "/api/graphql").Inc()
	m.UpstreamErrors.WithLabelValues("api").Inc()
	m.FlagRefreshes.WithLabelValues("ok").Inc()

	families, err = m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"checkout_gateway_http_requests_total":   false,
		"checkout_gateway_upstream_errors_total": false,
		"checkout_gateway_flag_refreshes_total":  false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %s in gathered metrics", name)
		}
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"GET", "GET"},
		{"POST", "POST"},
		{"PUT", "PUT"},
		{"DELETE", "DELETE"},
		{"PATCH", "PATCH"},
		{"HEAD", "HEAD"},
		{"OPTIONS", "OPTIONS"},
		{"FOOBAR", "other"},
		{"get", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got := NormalizeMethod(tt.method)
			if got != tt.want {
				t.Errorf("NormalizeMethod(%q) = %q, want %q", tt.method, got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		basePath string
		path     string
		want     string
	}{
		{"", "/api/graphql", "/api/graphql"},
		{"", "/api/login", "/api/login"},
		{"", "/api/braintree-token", "/api/braintree-token"},
		{"", "/api/vt-events", "/api/vt-events"},
		{"", "/api/session", "/api/session"},
		{"", "/healthz", "/healthz"},
		{"", "/proxy/status", "/proxy/status"},
		{"", "/metrics", "/metrics"},
		{"", "/api/graphqlx", "other"},
		{"", "/api", "other"},
		{"", "/", "other"},
		{"/checkout", "/checkout/api/graphql", "/api/graphql"},
		{"/checkout", "/checkout/api/session", "/api/session"},
		{"/checkout", "/checkout/unknown", "other"},
		{"/checkout", "/metrics", "/metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.basePath+tt.path, func(t *testing.T) {
			got := NormalizePath(tt.basePath, tt.path)
			if got != tt.want {
				t.Errorf("NormalizePath(%q, %q) = %q, want %q", tt.basePath, tt.path, got, tt.want)
			}
		})
	}
}
