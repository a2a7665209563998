// Package urlnorm canonicalizes user-entered embed targets.
package urlnorm

import (
	"errors"
	"fmt"
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"
)

const (
	SchemeHTTP  = "http://"
	SchemeHTTPS = "https://"
)

var ErrInvalidURL = errors.New("invalid url")

// HasScheme reports whether input starts with http:// or https://.
func HasScheme(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, SchemeHTTP) || strings.HasPrefix(lower, SchemeHTTPS)
}

// StripScheme splits an http(s) prefix from the rest of the input.
// Scheme is empty when the input carries none.
func StripScheme(input string) (scheme, rest string) {
	lower := strings.ToLower(input)
	switch {
	case strings.HasPrefix(lower, SchemeHTTPS):
		return SchemeHTTPS, input[len(SchemeHTTPS):]
	case strings.HasPrefix(lower, SchemeHTTP):
		return SchemeHTTP, input[len(SchemeHTTP):]
	}

	return "", input
}

func withScheme(input string) string {
	if HasScheme(input) {
		return input
	}

	return SchemeHTTPS + input
}

func parse(input string) (*whatwg.Url, error) {
	u, err := whatwg.Parse(withScheme(strings.TrimSpace(input)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	return u, nil
}

// IsValidURL accepts the empty string as "not entered yet". Anything else must
// parse once https:// is injected and must name a dotted host or an IP literal.
func IsValidURL(input string) bool {
	if input == "" {
		return true
	}

	u, err := parse(input)
	if err != nil {
		return false
	}

	return hasEmbeddableHost(u)
}

func hasEmbeddableHost(u *whatwg.Url) bool {
	if u.IsIPv4() || u.IsIPv6() {
		return true
	}

	host := u.Hostname()
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}

	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return false
		}
	}

	return true
}

// NormalizeURL injects https:// when no scheme is present, serializes the
// parsed URL and strips trailing slashes.
func NormalizeURL(input string) (string, error) {
	u, err := parse(input)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(u.Href(false), "/"), nil
}

// Hostname returns the lowercased host of input, or an empty string when input does not parse.
func Hostname(input string) string {
	u, err := parse(input)
	if err != nil {
		return ""
	}

	return u.Hostname()
}
