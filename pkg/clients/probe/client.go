// Package probe fetches response headers and page titles from embed targets.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"iframe-generator/pkg/constants"
	"iframe-generator/pkg/urlnorm"
)

var (
	ErrUnsupportedScheme = errors.New("only http and https urls can be probed")
	ErrHostUnavailable   = errors.New("target host temporarily unavailable")
	ErrBlockedAddress    = errors.New("target resolves to a non-public address")
)

type Client interface {
	// Probe returns the status and headers of url, trying HEAD first and GET
	// when the target rejects HEAD.
	Probe(ctx context.Context, url string) (Response, error)
	FetchTitle(ctx context.Context, url string) (string, error)
	// Purge drops closed circuit breakers of hosts idle for breakerIdleTTL
	// and returns how many were removed.
	Purge() int
}

type Response struct {
	StatusCode int
	Method     string
	Header     http.Header
}

type Config struct {
	Timeout        time.Duration
	RetryMax       int
	RequestsPerSec float64
	Burst          int
	UserAgent      string
	BreakerTimeout time.Duration

	// AllowPrivateNetworks lets requests reach loopback, private and
	// link-local addresses. Off in production.
	AllowPrivateNetworks bool
}

type client struct {
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	cache     *HeadersCache
	metrics   *Metrics
	userAgent string
	logger    *slog.Logger

	breakersMu     sync.Mutex
	breakers       map[string]*hostBreaker
	breakerTimeout time.Duration
	now            func() time.Time
}

const breakerIdleTTL = 10 * time.Minute

type hostBreaker struct {
	cb       *gobreaker.CircuitBreaker
	lastUsed time.Time
}

func (c *client) Probe(ctx context.Context, url string) (Response, error) {
	if !urlnorm.HasScheme(url) {
		return Response{}, ErrUnsupportedScheme
	}

	if c.cache != nil {
		if resp, ok := c.cache.Get(url); ok {
			return resp, nil
		}
	}

	resp, err := c.doRequest(ctx, "probe", http.MethodHead, url, nil)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		resp, err = c.doRequest(ctx, "probe", http.MethodGet, url, nil)
	}
	if err != nil {
		return Response{}, err
	}

	if c.cache != nil {
		c.cache.Set(url, resp)
	}

	return resp, nil
}

// FetchTitle reads the document title, falling back to og:title.
func (c *client) FetchTitle(ctx context.Context, url string) (string, error) {
	if !urlnorm.HasScheme(url) {
		return "", ErrUnsupportedScheme
	}

	var title string
	_, err := c.doRequest(ctx, "title", http.MethodGet, url, func(body io.Reader) error {
		doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, constants.MaxTitleBodySize))
		if err != nil {
			return fmt.Errorf("failed to parse document: %w", err)
		}

		title = strings.TrimSpace(doc.Find("head title").First().Text())
		if title == "" {
			og, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
			title = strings.TrimSpace(og)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return title, nil
}

func (c *client) doRequest(ctx context.Context, kind, method, url string, readBody func(io.Reader) error) (resp Response, err error) {
	start := time.Now()
	defer func() {
		if c.metrics == nil {
			return
		}
		result := "success"
		if err != nil {
			result = "error"
		}
		c.metrics.probeReqs.WithLabelValues(kind, result).Inc()
		c.metrics.probeDuration.WithLabelValues(kind, result).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limit wait: %w", err)
	}

	breaker := c.breaker(urlnorm.Hostname(url))
	res, err := breaker.Execute(func() (interface{}, error) {
		r, err := retryablehttp.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		r.Header.Set("User-Agent", c.userAgent)
		r.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

		res, err := c.http.Do(r)
		if err != nil {
			return nil, fmt.Errorf("failed to make request: %w", err)
		}
		defer res.Body.Close()

		if readBody != nil && res.StatusCode < http.StatusBadRequest {
			if err := readBody(res.Body); err != nil {
				return nil, err
			}
		}

		return Response{
			StatusCode: res.StatusCode,
			Method:     method,
			Header:     res.Header.Clone(),
		}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Response{}, fmt.Errorf("%w: %w", ErrHostUnavailable, err)
		}
		return Response{}, err
	}

	return res.(Response), nil
}

// breaker returns the circuit breaker of host, so one failing site never
// blocks probes of others.
func (c *client) breaker(host string) *gobreaker.CircuitBreaker {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()

	if b, ok := c.breakers[host]; ok {
		b.lastUsed = c.now()
		return b.cb
	}

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("probe circuit breaker state changed",
				slog.String("host", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			if c.metrics != nil {
				c.metrics.breakerTrips.WithLabelValues(to.String()).Inc()
			}
		},
	})
	c.breakers[host] = &hostBreaker{cb: b, lastUsed: c.now()}

	return b
}

func (c *client) Purge() int {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()

	cutoff := c.now().Add(-breakerIdleTTL)
	removed := 0
	for host, b := range c.breakers {
		// open and half-open breakers keep their host blocked until they recover
		if b.lastUsed.Before(cutoff) && b.cb.State() == gobreaker.StateClosed {
			delete(c.breakers, host)
			removed++
		}
	}

	return removed
}

// retryOnTransportError retries connection failures only. Any HTTP response,
// including 5xx, carries the headers a probe is after.
func retryOnTransportError(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrBlockedAddress) {
		return false, err
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// publicOnlyDialer refuses connections to addresses outside the public
// internet. The check runs on the resolved address, so DNS names and
// redirects pointing inward are caught as well.
func publicOnlyDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			ap, err := netip.ParseAddrPort(address)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
			}
			if !isPublic(ap.Addr()) {
				return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
			}
			return nil
		},
	}
}

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified()
}

func NewClient(cfg Config, cache *HeadersCache, metrics *Metrics, logger *slog.Logger) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSec) + 1
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "iframe-generator-probe/1.0"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = logger
	rc.CheckRetry = retryOnTransportError
	if !cfg.AllowPrivateNetworks {
		if t, ok := rc.HTTPClient.Transport.(*http.Transport); ok {
			t.DialContext = publicOnlyDialer().DialContext
		}
	}

	return &client{
		http:           rc,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		cache:          cache,
		metrics:        metrics,
		userAgent:      cfg.UserAgent,
		logger:         logger,
		breakers:       make(map[string]*hostBreaker),
		breakerTimeout: cfg.BreakerTimeout,
		now:            time.Now,
	}
}
