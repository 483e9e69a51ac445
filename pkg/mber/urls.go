package mber

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mber/mber-go/pkg/transport"
)

// BaseURLWithPath resolves an endpoint path against the scheme and
// authority of rawURL. Any path or query on rawURL is dropped, the port is
// preserved, and the result always ends with a slash.
func BaseURLWithPath(rawURL, endpoint string) (string, error) {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid service URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid service URL %q: missing scheme or host", rawURL)
	}

	base := &url.URL{Scheme: u.Scheme, Host: u.Host}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint path %q: %w", endpoint, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// IsServiceURL reports whether the given URL hosts the Mber service. A URL
// qualifies if a GET to its jsdl endpoint returns non-empty JSON.
func IsServiceURL(rawURL string) bool {
	probe, err := BaseURLWithPath(rawURL, "jsdl")
	if err != nil {
		return false
	}
	call, err := transport.New().Get(probe, nil)
	if err != nil {
		return false
	}
	if !gjson.Valid(call.Body) {
		return false
	}
	parsed := gjson.Parse(call.Body)
	switch {
	case parsed.IsObject():
		return len(parsed.Map()) > 0
	case parsed.IsArray():
		return len(parsed.Array()) > 0
	default:
		return false
	}
}
