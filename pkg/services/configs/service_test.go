package configs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/history"
	"iframe-generator/pkg/models"
	"iframe-generator/pkg/repositories/kv"
)

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}

func (failingStore) Set(ctx context.Context, key, value string) error {
	return errors.New("connection refused")
}

func (failingStore) Remove(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func appCode(t *testing.T, err error) int {
	t.Helper()

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("err = %v, want *models.AppError", err)
	}
	return appErr.Code
}

func TestConfigs(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	h := history.NewService(kv.NewMemoryRepository(), logger)
	svc := NewService(h, logger)

	entries, err := svc.History(ctx)
	if err != nil || entries == nil || len(entries) != 0 {
		t.Fatalf("History = %v, %v; want empty non-nil slice", entries, err)
	}

	if _, err := h.SaveConfig(ctx, embedconfig.ForURL("example.com")); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	cfg, err := svc.Config(ctx, "https://example.com/")
	if err != nil || cfg.URL != "https://example.com" {
		t.Errorf("Config = %+v, %v", cfg, err)
	}
	if _, err := svc.Config(ctx, "other.example"); appCode(t, err) != http.StatusNotFound {
		t.Error("unknown url should be 404")
	}
	if _, err := svc.Config(ctx, ""); appCode(t, err) != http.StatusBadRequest {
		t.Error("empty url should be 400")
	}

	if err := svc.RemoveFromHistory(ctx, "example.com"); err != nil {
		t.Fatalf("RemoveFromHistory: %v", err)
	}
	if entries, _ := svc.History(ctx); len(entries) != 0 {
		t.Errorf("entries = %+v", entries)
	}

	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if _, err := svc.Config(ctx, "example.com"); appCode(t, err) != http.StatusNotFound {
		t.Error("config should be gone after clear")
	}
}

func TestConfigsStoreFailures(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(history.NewService(failingStore{}, logger), logger)

	if err := svc.ClearHistory(ctx); appCode(t, err) != http.StatusInternalServerError {
		t.Error("clear failure should be 500")
	}
	if err := svc.RemoveFromHistory(ctx, "example.com"); appCode(t, err) != http.StatusInternalServerError {
		t.Error("remove failure should be 500")
	}
}
