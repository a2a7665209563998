package httpServer

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"iframe-generator/pkg/cache"
	"iframe-generator/pkg/clients/probe"
	"iframe-generator/pkg/embedcheck"
	"iframe-generator/pkg/history"
	"iframe-generator/pkg/models"
	v1 "iframe-generator/pkg/models/api/v1"
	"iframe-generator/pkg/repositories/kv"
	configsService "iframe-generator/pkg/services/configs"
	embedService "iframe-generator/pkg/services/embed"
	snippetsService "iframe-generator/pkg/services/snippets"
)

const testToken = "secret-token"

type fakeEmbed struct {
	resp       v1.EmbedCheckResponse
	err        error
	lastOrigin string
}

func (f *fakeEmbed) CheckEmbed(ctx context.Context, url, origin, session string) (v1.EmbedCheckResponse, error) {
	f.lastOrigin = origin
	if url == "" {
		return v1.EmbedCheckResponse{}, models.NewAppError(http.StatusBadRequest, "URL parameter is missing or malformed")
	}
	return f.resp, f.err
}

func (f *fakeEmbed) PageTitle(ctx context.Context, url string) (string, error) {
	return "Example Domain", nil
}

func newTestApp(t *testing.T, embed *fakeEmbed) *fiber.App {
	t.Helper()
	return newTestAppWithEmbed(t, embed)
}

func newTestAppWithEmbed(t *testing.T, embed embed) *fiber.App {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	hist := history.NewService(kv.NewMemoryRepository(), logger)

	hash := md5.Sum([]byte(testToken))

	app := fiber.New()
	h := New(
		app,
		embed,
		snippetsService.NewService(hist, logger),
		configsService.NewService(hist, logger),
		prometheus.NewRegistry(),
		[]string{fmt.Sprintf("%x", hash[:])},
		"test",
		"server",
		logger,
	)
	h.RegisterRoutes()

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return resp, data
}

func TestCheckEmbed(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		embed      *fakeEmbed
		wantStatus int
		wantEmbed  bool
	}{
		{
			name:       "embeddable",
			target:     "/api/check-embed?url=example.com",
			embed:      &fakeEmbed{resp: v1.EmbedCheckResponse{CanEmbed: true}},
			wantStatus: http.StatusOK,
			wantEmbed:  true,
		},
		{
			name:   "blocked",
			target: "/api/check-embed?url=example.com",
			embed: &fakeEmbed{resp: v1.EmbedCheckResponse{
				Reason: "X-Frame-Options is set to DENY, embedding is forbidden",
				Type:   models.IframeErrorXFrameOptions,
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing url",
			target:     "/api/check-embed",
			embed:      &fakeEmbed{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "url too long",
			target:     "/api/check-embed?url=example.com/" + strings.Repeat("a", 2100),
			embed:      &fakeEmbed{resp: v1.EmbedCheckResponse{CanEmbed: true}},
			wantStatus: http.StatusRequestURITooLong,
		},
		{
			name:       "probe failure",
			target:     "/api/check-embed?url=example.com",
			embed:      &fakeEmbed{err: models.NewAppError(http.StatusInternalServerError, "server error, unable to check embedding permissions")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.embed)

			resp, body := doRequest(t, app, http.MethodGet, tt.target, "")
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.wantStatus, body)
			}

			var got v1.EmbedCheckResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode %s: %v", body, err)
			}
			if got.CanEmbed != tt.wantEmbed {
				t.Errorf("canEmbed = %v, want %v", got.CanEmbed, tt.wantEmbed)
			}
			if !got.CanEmbed && got.Reason == "" {
				t.Error("a negative answer must carry a reason")
			}
		})
	}
}

type recordingFetcher struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordingFetcher) Probe(ctx context.Context, url string) (probe.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return probe.Response{StatusCode: http.StatusOK, Header: http.Header{}}, nil
}

func (r *recordingFetcher) FetchTitle(ctx context.Context, url string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return "Internal", nil
}

func TestCheckEmbedRejectsHostsWithoutDomain(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	fetcher := &recordingFetcher{}
	svc := embedService.NewService(
		embedcheck.NewChecker(fetcher, time.Second, logger),
		fetcher,
		cache.NewSimpleCache(time.Minute),
		logger,
	)
	app := newTestAppWithEmbed(t, svc)

	for _, target := range []string{
		"/api/check-embed?url=localhost:6379",
		"/api/check-embed?url=internal-admin",
		"/api/v1/page-title?url=internal-admin",
	} {
		resp, body := doRequest(t, app, http.MethodGet, target, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d (%s)", target, resp.StatusCode, body)
		}
	}

	resp, body := doRequest(t, app, http.MethodGet, "/api/check-embed?url=example.com", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, body)
	}

	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://example.com" {
		t.Errorf("requested %v, want only https://example.com", fetcher.urls)
	}
}

func TestCheckEmbedOrigin(t *testing.T) {
	embed := &fakeEmbed{resp: v1.EmbedCheckResponse{CanEmbed: true}}
	app := newTestApp(t, embed)

	doRequest(t, app, http.MethodGet, "/api/check-embed?url=example.com", "", "Origin", "https://app.example")
	if embed.lastOrigin != "https://app.example" {
		t.Errorf("origin = %q, want header value", embed.lastOrigin)
	}

	doRequest(t, app, http.MethodGet, "/api/check-embed?url=example.com&origin=https://other.example", "", "Origin", "https://app.example")
	if embed.lastOrigin != "https://other.example" {
		t.Errorf("origin = %q, want query value", embed.lastOrigin)
	}
}

func TestIframeHTMLAndHistory(t *testing.T) {
	app := newTestApp(t, &fakeEmbed{})

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/iframe/html?save=true",
		`{"config":{"url":"example.com","width":"800","widthUnit":"px","title":"Demo"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, body)
	}

	var html v1.IframeHTMLResponse
	if err := json.Unmarshal(body, &html); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(html.HTML, `title="Demo"`) || !strings.Contains(html.HTML, "width: 800px") {
		t.Errorf("html = %q", html.HTML)
	}

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/history", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var hist v1.HistoryResponse
	if err := json.Unmarshal(body, &hist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hist.Entries) != 1 || hist.Entries[0].URL != "https://example.com" {
		t.Errorf("history = %+v", hist.Entries)
	}

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/history/config?url=example.com", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("config status = %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/v1/history", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("clear status = %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/history/config?url=example.com", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("config after clear status = %d", resp.StatusCode)
	}
}

func TestBadBodies(t *testing.T) {
	app := newTestApp(t, &fakeEmbed{})

	for _, body := range []string{"", "[1]", "{broken"} {
		resp, data := doRequest(t, app, http.MethodPost, "/api/v1/iframe/props", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, resp.StatusCode)
		}
		if !strings.Contains(string(data), `"error"`) {
			t.Errorf("body %q: response %s has no error field", body, data)
		}
	}
}

func TestYoutubeCode(t *testing.T) {
	app := newTestApp(t, &fakeEmbed{})

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/youtube/embed-url", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, body)
	}

	var code v1.CodeResponse
	if err := json.Unmarshal(body, &code); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(code.Code, "https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0") {
		t.Errorf("code = %q", code.Code)
	}

	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/youtube/flash", `{"url":"dQw4w9WgXcQ"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown format status = %d", resp.StatusCode)
	}
}

func TestYoutubePartialConfigKeepsDefaults(t *testing.T) {
	app := newTestApp(t, &fakeEmbed{})

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/youtube/embed-url", `{"config":{"videoId":"abc123"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, body)
	}

	var code v1.CodeResponse
	if err := json.Unmarshal(body, &code); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := "https://www.youtube.com/embed/abc123?rel=0&enablejsapi=1&controls=1"; code.Code != want {
		t.Errorf("code = %q, want %q", code.Code, want)
	}
}

func TestPreview(t *testing.T) {
	app := newTestApp(t, &fakeEmbed{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/preview?url=example.com", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if resp.Header.Get("Content-Security-Policy") != previewCSP {
		t.Error("preview must carry the CSP header")
	}
	if !strings.Contains(string(body), `<iframe src="https://example.com"`) {
		t.Error("preview does not embed the url")
	}
}

func TestErrorMessages(t *testing.T) {
	app := newTestApp(t, &fakeEmbed{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/errors/x_frame_options", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var msg models.IframeErrorMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Title != "Embedding restricted" {
		t.Errorf("title = %q", msg.Title)
	}

	resp, body = doRequest(t, app, http.MethodPost, "/api/v1/errors/classify", `{"message":"Request timed out"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"type":"TIMEOUT"`) {
		t.Errorf("classify response = %s", body)
	}
}

func TestMetricsRequiresToken(t *testing.T) {
	app := newTestApp(t, &fakeEmbed{})

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/metrics", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/metrics", "", "Authorization", "Bearer wrong")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status with wrong token = %d", resp.StatusCode)
	}

	doRequest(t, app, http.MethodGet, "/api/v1/health", "")
	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/metrics", "", "Authorization", "Bearer "+testToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with token = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "test_server_requests_total") {
		t.Error("request counter missing from metrics output")
	}
}

func TestAccessTokenPermissions(t *testing.T) {
	h := New(fiber.New(), nil, nil, nil, prometheus.NewRegistry(),
		[]string{"AAA", "bbb:metrics", "ccc:none", " ", "ddd:all"}, "", "", slog.New(slog.DiscardHandler))

	want := map[string]bool{"aaa": true, "bbb": true, "ccc": false, "ddd": true}
	if len(h.accessTokens) != len(want) {
		t.Fatalf("tokens = %+v", h.accessTokens)
	}
	for hash, metrics := range want {
		if h.accessTokens[hash].Metrics != metrics {
			t.Errorf("token %s metrics = %v, want %v", hash, h.accessTokens[hash].Metrics, metrics)
		}
	}
}
