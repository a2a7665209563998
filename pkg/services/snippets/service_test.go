package snippets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/history"
	"iframe-generator/pkg/markup"
	"iframe-generator/pkg/models"
	v1 "iframe-generator/pkg/models/api/v1"
	"iframe-generator/pkg/repositories/kv"
	"iframe-generator/pkg/youtube"
)

func newTestService() (Snippets, *history.Service) {
	h := history.NewService(kv.NewMemoryRepository(), slog.New(slog.DiscardHandler))
	return NewService(h, slog.New(slog.DiscardHandler)), h
}

func appCode(t *testing.T, err error) int {
	t.Helper()

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("err = %v, want *models.AppError", err)
	}
	return appErr.Code
}

func TestIframeProps(t *testing.T) {
	svc, _ := newTestService()

	cfg := embedconfig.ForURL("https://example.com")
	cfg.Width = "800px"
	cfg.WidthUnit = embedconfig.UnitPx

	resp, err := svc.IframeProps(context.Background(), v1.IframePropsRequest{
		Config:        cfg,
		DeviceType:    "tablet",
		ViewportWidth: 1440,
		CustomStyles:  markup.NewStyle(markup.StyleEntry{Property: "opacity", Value: "1"}),
	})
	if err != nil {
		t.Fatalf("IframeProps: %v", err)
	}

	if want := "border: none; opacity: 1; width: 100%; height: 1024px"; resp.StyleString != want {
		t.Errorf("style = %q, want %q", resp.StyleString, want)
	}
	if src, _ := resp.Props.Get("src"); src != "https://example.com" {
		t.Errorf("src = %v", src)
	}
	if resp.Size == nil || resp.Size.Device != "Tablet (768×1024px)" {
		t.Errorf("size = %+v", resp.Size)
	}
}

func TestIframePropsWithoutViewportWidth(t *testing.T) {
	svc, _ := newTestService()

	cfg := embedconfig.ForURL("https://example.com")
	cfg.Width = "375"
	cfg.WidthUnit = embedconfig.UnitPx

	resp, err := svc.IframeProps(context.Background(), v1.IframePropsRequest{
		Config:     cfg,
		DeviceType: "mobile",
	})
	if err != nil {
		t.Fatalf("IframeProps: %v", err)
	}

	if resp.Size == nil {
		t.Fatal("size info missing")
	}
	if resp.Size.Scale != 1 || resp.Size.Scaled != "" {
		t.Errorf("size = %+v, want unscaled preview", resp.Size)
	}
}

func TestIframePropsRejectsUnknownDevice(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.IframeProps(context.Background(), v1.IframePropsRequest{
		Config:     embedconfig.Default(),
		DeviceType: "watch",
	})
	if code := appCode(t, err); code != http.StatusBadRequest {
		t.Errorf("code = %d", code)
	}
}

func TestIframeHTMLSavesConfig(t *testing.T) {
	ctx := context.Background()
	svc, h := newTestService()

	resp, err := svc.IframeHTML(ctx, embedconfig.ForURL("example.com/"), true)
	if err != nil {
		t.Fatalf("IframeHTML: %v", err)
	}
	if !strings.HasPrefix(resp.HTML, `<iframe src="example.com/"`) {
		t.Errorf("html = %q", resp.HTML)
	}
	if resp.Config == nil || resp.Config.URL != "https://example.com" {
		t.Errorf("saved config = %+v", resp.Config)
	}

	entries, _ := h.List(ctx)
	if len(entries) != 1 {
		t.Errorf("history has %d entries", len(entries))
	}
}

func TestIframeHTMLValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.IframeHTML(ctx, embedconfig.ForURL("not a url"), false); appCode(t, err) != http.StatusBadRequest {
		t.Error("invalid url should be rejected")
	}
	if _, err := svc.IframeHTML(ctx, embedconfig.Default(), true); appCode(t, err) != http.StatusBadRequest {
		t.Error("saving without url should be rejected")
	}
	if _, err := svc.IframeHTML(ctx, embedconfig.Default(), false); err != nil {
		t.Errorf("generating without url: %v", err)
	}
}

func TestApplyPreset(t *testing.T) {
	svc, _ := newTestService()

	cfg, err := svc.ApplyPreset(context.Background(), embedconfig.ForURL("https://example.com"), "video")
	if err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	if cfg.URL != "https://example.com" {
		t.Errorf("preset overwrote url: %q", cfg.URL)
	}

	if _, err := svc.ApplyPreset(context.Background(), embedconfig.Default(), "nope"); appCode(t, err) != http.StatusNotFound {
		t.Error("unknown preset should be 404")
	}
}

func TestYoutube(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	code, err := svc.Youtube(ctx, FormatEmbedURL, v1.YoutubeRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Youtube: %v", err)
	}
	if !strings.HasPrefix(code, "https://www.youtube.com/embed/dQw4w9WgXcQ?") {
		t.Errorf("code = %q", code)
	}

	cfg := youtube.DefaultConfig()
	cfg.VideoID = "abc123"
	cfg.Cookie = false
	code, err = svc.Youtube(ctx, FormatStandard, v1.YoutubeRequest{Config: &cfg})
	if err != nil {
		t.Fatalf("Youtube: %v", err)
	}
	if !strings.Contains(code, "www.youtube-nocookie.com/embed/abc123") {
		t.Errorf("code = %q", code)
	}

	if _, err := svc.Youtube(ctx, "gif", v1.YoutubeRequest{URL: "abc"}); appCode(t, err) != http.StatusNotFound {
		t.Error("unknown format should be 404")
	}
	if _, err := svc.Youtube(ctx, FormatLite, v1.YoutubeRequest{}); appCode(t, err) != http.StatusBadRequest {
		t.Error("missing video should be 400")
	}
}

func TestVideoInfo(t *testing.T) {
	svc, _ := newTestService()

	info, err := svc.VideoInfo("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10")
	if err != nil || info.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoInfo = %+v, %v", info, err)
	}
	if _, err := svc.VideoInfo("!!!"); appCode(t, err) != http.StatusBadRequest {
		t.Error("input without id should be rejected")
	}
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	svc, h := newTestService()

	page, err := svc.Preview(ctx, "example.com")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(page, `<iframe src="https://example.com"`) {
		t.Error("default preview should embed the normalized url")
	}

	cfg := embedconfig.ForURL("example.com")
	cfg.Title = "Saved title"
	if _, err := h.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	page, err = svc.Preview(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(page, `title="Saved title"`) {
		t.Error("preview should use the saved config")
	}

	if _, err := svc.Preview(ctx, "localhost"); appCode(t, err) != http.StatusBadRequest {
		t.Error("invalid url should be rejected")
	}
}
