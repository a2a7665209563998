// Package embedcheck decides whether a page may be framed, based on its
// X-Frame-Options and Content-Security-Policy response headers.
package embedcheck

import (
	"net/http"
	"strconv"
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"

	"iframe-generator/pkg/models"
)

const (
	ReasonDeny       = "X-Frame-Options is set to DENY, embedding is forbidden"
	ReasonSameOrigin = "X-Frame-Options is set to SAMEORIGIN, only same-origin embedding is allowed"
	reasonCSP        = "Content-Security-Policy restricts frame-ancestors: "
)

type Verdict struct {
	CanEmbed       bool                   `json:"canEmbed"`
	Reason         string                 `json:"reason,omitempty"`
	Type           models.IframeErrorType `json:"type,omitempty"`
	AllowedOrigins []string               `json:"allowedOrigins,omitempty"`
}

type options struct {
	embeddingOrigin *origin
	targetOrigin    *origin
}

type Option func(*options)

// WithEmbeddingOrigin names the origin that will host the iframe. An explicit
// frame-ancestors list only allows embedding when one of its sources matches it.
func WithEmbeddingOrigin(o string) Option {
	return func(opts *options) {
		opts.embeddingOrigin = parseOrigin(o)
	}
}

// WithTargetURL lets 'self' sources match when the embedding origin is the
// target's own origin.
func WithTargetURL(u string) Option {
	return func(opts *options) {
		opts.targetOrigin = parseOrigin(u)
	}
}

// Classify applies, in order: X-Frame-Options DENY, X-Frame-Options
// SAMEORIGIN, CSP frame-ancestors. Without a blocking signal the page is embeddable.
func Classify(h http.Header, opts ...Option) Verdict {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	xfo := strings.ToUpper(strings.Join(h.Values("X-Frame-Options"), ","))
	switch {
	case strings.Contains(xfo, "DENY"):
		return Verdict{Reason: ReasonDeny, Type: models.IframeErrorXFrameOptions}
	case strings.Contains(xfo, "SAMEORIGIN"):
		return Verdict{Reason: ReasonSameOrigin, Type: models.IframeErrorXFrameOptions}
	}

	for _, policy := range h.Values("Content-Security-Policy") {
		sources, ok := FrameAncestors(policy)
		if !ok {
			continue
		}
		if o.allows(sources) {
			continue
		}

		return Verdict{
			Reason:         reasonCSP + strings.Join(sources, ", "),
			Type:           models.IframeErrorCSP,
			AllowedOrigins: sources,
		}
	}

	return Verdict{CanEmbed: true}
}

// FrameAncestors extracts the frame-ancestors source list of a policy with
// quotes stripped from every source. ok is false when the directive is absent.
func FrameAncestors(policy string) (sources []string, ok bool) {
	for _, directive := range strings.Split(policy, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 || !strings.EqualFold(fields[0], "frame-ancestors") {
			continue
		}

		sources = make([]string, 0, len(fields)-1)
		for _, f := range fields[1:] {
			if s := strings.Trim(f, `'"`); s != "" {
				sources = append(sources, s)
			}
		}
		return sources, true
	}

	return nil, false
}

func (o options) allows(sources []string) bool {
	if len(sources) == 0 {
		return false
	}
	if len(sources) == 1 && strings.EqualFold(sources[0], "none") {
		return false
	}

	for _, s := range sources {
		if s == "*" {
			return true
		}
		if o.embeddingOrigin == nil {
			continue
		}
		if strings.EqualFold(s, "self") {
			if o.targetOrigin != nil && *o.targetOrigin == *o.embeddingOrigin {
				return true
			}
			continue
		}
		if matchSource(s, *o.embeddingOrigin) {
			return true
		}
	}

	return false
}

type origin struct {
	scheme string
	host   string
	port   int
}

func parseOrigin(raw string) *origin {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	u, err := whatwg.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil
	}

	return &origin{
		scheme: u.Scheme(),
		host:   strings.ToLower(u.Hostname()),
		port:   u.DecodedPort(),
	}
}

var defaultPorts = map[string]int{"http": 80, "https": 443, "ws": 80, "wss": 443}

// matchSource implements CSP source matching for scheme sources ("https:")
// and host sources ("*.example.com", "https://example.com:8443/path").
func matchSource(source string, o origin) bool {
	source = strings.ToLower(source)

	scheme := ""
	if i := strings.Index(source, "://"); i >= 0 {
		scheme, source = source[:i], source[i+3:]
	} else if strings.HasSuffix(source, ":") && !strings.Contains(source, "/") {
		return schemeMatches(strings.TrimSuffix(source, ":"), o.scheme)
	}

	if scheme == "" {
		if o.scheme != "http" && o.scheme != "https" {
			return false
		}
	} else if !schemeMatches(scheme, o.scheme) {
		return false
	}

	if i := strings.Index(source, "/"); i >= 0 {
		source = source[:i]
	}

	host, port := source, ""
	if i := strings.LastIndex(source, ":"); i >= 0 && !strings.HasSuffix(source, "]") {
		host, port = source[:i], source[i+1:]
	}

	if !hostMatches(host, o.host) {
		return false
	}

	switch port {
	case "*":
		return true
	case "":
		want := defaultPorts[o.scheme]
		if scheme != "" {
			want = defaultPorts[scheme]
		}
		return o.port == want || (scheme == "http" && o.scheme == "https" && o.port == 443)
	}

	p, err := strconv.Atoi(port)
	return err == nil && p == o.port
}

func schemeMatches(source, scheme string) bool {
	return source == scheme ||
		(source == "http" && scheme == "https") ||
		(source == "ws" && (scheme == "wss" || scheme == "http" || scheme == "https"))
}

func hostMatches(pattern, host string) bool {
	if pattern == "*" {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(host, "."+suffix)
	}

	return pattern == host
}
