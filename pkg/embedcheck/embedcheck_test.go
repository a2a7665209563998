package embedcheck

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"iframe-generator/pkg/clients/probe"
	"iframe-generator/pkg/models"
	"iframe-generator/pkg/urlnorm"
)

func header(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return h
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		header   http.Header
		canEmbed bool
		reason   string
		typ      models.IframeErrorType
	}{
		{"no headers", header(), true, "", ""},
		{"deny", header("X-Frame-Options", "DENY"), false, ReasonDeny, models.IframeErrorXFrameOptions},
		{"sameorigin", header("X-Frame-Options", "SAMEORIGIN"), false, ReasonSameOrigin, models.IframeErrorXFrameOptions},
		{"lowercase deny", header("X-Frame-Options", "deny"), false, ReasonDeny, models.IframeErrorXFrameOptions},
		{
			"deny wins over csp",
			header("X-Frame-Options", "DENY", "Content-Security-Policy", "frame-ancestors *"),
			false, ReasonDeny, models.IframeErrorXFrameOptions,
		},
		{
			"csp none",
			header("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'"),
			false, "Content-Security-Policy restricts frame-ancestors: none", models.IframeErrorCSP,
		},
		{
			"csp list",
			header("Content-Security-Policy", "frame-ancestors 'self' https://a.example"),
			false, "Content-Security-Policy restricts frame-ancestors: self, https://a.example", models.IframeErrorCSP,
		},
		{
			"csp empty list",
			header("Content-Security-Policy", "frame-ancestors ;script-src 'none'"),
			false, "Content-Security-Policy restricts frame-ancestors: ", models.IframeErrorCSP,
		},
		{"csp wildcard", header("Content-Security-Policy", "frame-ancestors *"), true, "", ""},
		{"csp without frame-ancestors", header("Content-Security-Policy", "default-src 'self'"), true, "", ""},
		{"unrelated xfo", header("X-Frame-Options", "ALLOW-FROM https://a.example"), true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.header)
			if v.CanEmbed != tt.canEmbed || v.Reason != tt.reason || v.Type != tt.typ {
				t.Errorf("Classify() = %+v, want canEmbed=%v reason=%q type=%q", v, tt.canEmbed, tt.reason, tt.typ)
			}
		})
	}
}

func TestClassifyAllowedOrigins(t *testing.T) {
	v := Classify(header("Content-Security-Policy", `frame-ancestors 'self' "https://b.example"`))
	if !slices.Equal(v.AllowedOrigins, []string{"self", "https://b.example"}) {
		t.Errorf("AllowedOrigins = %v", v.AllowedOrigins)
	}
}

func TestClassifyWithEmbeddingOrigin(t *testing.T) {
	tests := []struct {
		policy string
		origin string
		want   bool
	}{
		{"frame-ancestors https://app.example", "https://app.example", true},
		{"frame-ancestors https://app.example", "https://evil.example", false},
		{"frame-ancestors https://app.example", "https://app.example:8443", false},
		{"frame-ancestors https://app.example:8443", "https://app.example:8443", true},
		{"frame-ancestors app.example", "https://app.example", true},
		{"frame-ancestors *.example.com", "https://docs.example.com", true},
		{"frame-ancestors *.example.com", "https://example.com", false},
		{"frame-ancestors https:", "https://anything.example", true},
		{"frame-ancestors http://app.example", "https://app.example", true},
		{"frame-ancestors 'self'", "https://other.example", false},
		{"frame-ancestors 'self'", "https://target.example", true},
		{"frame-ancestors 'none'", "https://target.example", false},
	}

	for _, tt := range tests {
		v := Classify(header("Content-Security-Policy", tt.policy),
			WithTargetURL("https://target.example/page"),
			WithEmbeddingOrigin(tt.origin))
		if v.CanEmbed != tt.want {
			t.Errorf("Classify(%q, origin %q).CanEmbed = %v, want %v", tt.policy, tt.origin, v.CanEmbed, tt.want)
		}
	}
}

func TestFrameAncestors(t *testing.T) {
	if _, ok := FrameAncestors("default-src 'self'"); ok {
		t.Error("directive reported present")
	}
	sources, ok := FrameAncestors("FRAME-ANCESTORS 'self'  https://x.example")
	if !ok || !slices.Equal(sources, []string{"self", "https://x.example"}) {
		t.Errorf("FrameAncestors() = %v, %v", sources, ok)
	}
}

type fakeProber struct {
	calls   atomic.Int32
	release chan struct{}
	resp    probe.Response
	err     error
	lastURL string
	mu      sync.Mutex
}

func (f *fakeProber) Probe(ctx context.Context, url string) (probe.Response, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastURL = url
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.resp, f.err
}

func TestCheckerClassifiesProbedHeaders(t *testing.T) {
	p := &fakeProber{resp: probe.Response{StatusCode: 200, Header: header("X-Frame-Options", "SAMEORIGIN")}}
	c := NewChecker(p, time.Second, nil)

	v, err := c.Check(context.Background(), "example.com/", "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v.CanEmbed || v.Reason != ReasonSameOrigin {
		t.Errorf("unexpected verdict %+v", v)
	}
	if p.lastURL != "https://example.com" {
		t.Errorf("probed %q", p.lastURL)
	}
}

func TestCheckerProbeFailureIsDistinct(t *testing.T) {
	p := &fakeProber{err: errors.New("connection refused")}
	c := NewChecker(p, time.Second, nil)

	_, err := c.Check(context.Background(), "https://example.com", "")
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("err = %v, want ErrProbeFailed", err)
	}

	_, err = c.Check(context.Background(), "https://", "")
	if !errors.Is(err, urlnorm.ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
}

func TestCheckerRejectsHostsWithoutDomain(t *testing.T) {
	p := &fakeProber{resp: probe.Response{StatusCode: 200}}
	c := NewChecker(p, time.Second, nil)

	for _, u := range []string{"localhost:6379", "internal-admin", "http://intranet/login"} {
		if _, err := c.Check(context.Background(), u, ""); !errors.Is(err, urlnorm.ErrInvalidURL) {
			t.Errorf("Check(%q) err = %v, want ErrInvalidURL", u, err)
		}
	}
	if n := p.calls.Load(); n != 0 {
		t.Errorf("prober called %d times", n)
	}
}

func TestCheckerCoalescesConcurrentChecks(t *testing.T) {
	p := &fakeProber{release: make(chan struct{}), resp: probe.Response{StatusCode: 200}}
	c := NewChecker(p, time.Second, nil)

	const n = 5
	var wg sync.WaitGroup
	results := make(chan Verdict, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Check(context.Background(), "https://example.com", "")
			if err != nil {
				t.Errorf("Check: %v", err)
			}
			results <- v
		}()
	}

	// wait for the first probe to start before releasing it
	deadline := time.Now().Add(time.Second)
	for p.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(p.release)
	wg.Wait()
	close(results)

	for v := range results {
		if !v.CanEmbed {
			t.Errorf("unexpected verdict %+v", v)
		}
	}
	if p.calls.Load() != 1 {
		t.Errorf("probe called %d times, want 1", p.calls.Load())
	}
}

func TestCheckerHonoursCallerContext(t *testing.T) {
	p := &fakeProber{release: make(chan struct{})}
	defer close(p.release)
	c := NewChecker(p, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Check(ctx, "https://example.com", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker

	first := tr.Begin("https://a.example")
	if !tr.Current(first) {
		t.Error("first ticket should be current")
	}

	second := tr.Begin("https://b.example")
	if tr.Current(first) {
		t.Error("superseded ticket reported current")
	}
	if !tr.Current(second) {
		t.Error("latest ticket should be current")
	}
	if tr.Current(Ticket{}) {
		t.Error("zero ticket reported current")
	}
}
