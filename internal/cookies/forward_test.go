package cookies

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForward(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		lines    []string
		want     []string
	}{
		{
			name:  "copies lines verbatim",
			lines: []string{"session=abc; Path=/; HttpOnly", "vt_authentication_token=jwt; Path=/; Secure"},
			want:  []string{"session=abc; Path=/; HttpOnly", "vt_authentication_token=jwt; Path=/; Secure"},
		},
		{
			name:  "later duplicate replaces earlier in place",
			lines: []string{"a=1; Path=/", "b=2", "a=3; Path=/"},
			want:  []string{"a=3; Path=/", "b=2"},
		},
		{
			name:  "different paths are distinct cookies",
			lines: []string{"a=1; Path=/", "a=2; Path=/checkout"},
			want:  []string{"a=1; Path=/", "a=2; Path=/checkout"},
		},
		{
			name:  "domain compared without leading dot",
			lines: []string{"a=1; Domain=.Example.com", "a=2; Domain=example.com"},
			want:  []string{"a=2; Domain=example.com"},
		},
		{
			name:     "merges with lines already on the response",
			existing: []string{"theme=dark", "session=old"},
			lines:    []string{"session=new"},
			want:     []string{"theme=dark", "session=new"},
		},
		{
			name:  "unparseable line kept",
			lines: []string{"garbage", "a=1"},
			want:  []string{"garbage", "a=1"},
		},
		{
			name:     "no lines leaves header untouched",
			existing: []string{"a=1", "a=2"},
			want:     []string{"a=1", "a=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := http.Header{}
			for _, l := range tt.existing {
				dst.Add("Set-Cookie", l)
			}

			Forward(dst, tt.lines)

			assert.Equal(t, tt.want, dst.Values("Set-Cookie"))
		})
	}
}

func TestLines(t *testing.T) {
	h := http.Header{}
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	h.Set("Content-Type", "application/json")

	assert.Equal(t, []string{"a=1", "b=2"}, Lines(h))
	assert.Empty(t, Lines(http.Header{}))
}
