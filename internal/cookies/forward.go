// Package cookies relays upstream Set-Cookie headers onto browser responses.
package cookies

import (
	"net/http"
	"slices"
	"strings"
)

// AuthCookieName is the cookie carrying the user's authentication JWT.
const AuthCookieName = "vt_authentication_token"

const headerSetCookie = "Set-Cookie"

// cookieKey identifies a cookie slot in the browser's jar.
type cookieKey struct {
	name   string
	domain string
	path   string
}

// Forward merges the Set-Cookie lines in lines into dst. Lines already present
// in dst take part in the merge: for each (name, domain, path) only the last
// line survives, keeping the position of its first occurrence. Lines that do
// not parse are relayed verbatim.
func Forward(dst http.Header, lines []string) {
	if len(lines) == 0 {
		return
	}

	all := append(slices.Clone(dst.Values(headerSetCookie)), lines...)
	merged := make([]string, 0, len(all))
	index := make(map[cookieKey]int, len(all))

	for _, line := range all {
		key, ok := keyOf(line)
		if !ok {
			merged = append(merged, line)
			continue
		}
		if i, seen := index[key]; seen {
			merged[i] = line
			continue
		}
		index[key] = len(merged)
		merged = append(merged, line)
	}

	dst.Del(headerSetCookie)
	for _, line := range merged {
		dst.Add(headerSetCookie, line)
	}
}

// Lines returns the Set-Cookie lines of an upstream response header.
func Lines(h http.Header) []string {
	return h.Values(headerSetCookie)
}

func keyOf(line string) (cookieKey, bool) {
	c, err := http.ParseSetCookie(line)
	if err != nil {
		return cookieKey{}, false
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	return cookieKey{
		name:   c.Name,
		domain: strings.TrimPrefix(strings.ToLower(c.Domain), "."),
		path:   path,
	}, true
}
