package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if err := repo.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := repo.Get(ctx, "k"); err != nil || v != "v2" {
		t.Errorf("Get = %q, %v", v, err)
	}

	if err := repo.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := repo.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v after remove", err)
	}
}

type countingRepo struct {
	Repository
	gets int
}

func (c *countingRepo) Get(ctx context.Context, key string) (string, error) {
	c.gets++
	return c.Repository.Get(ctx, key)
}

func TestCacheMiddleware(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{Repository: NewMemoryRepository()}
	repo := NewCache(inner, time.Minute)

	_ = repo.Set(ctx, "k", "v")
	for i := 0; i < 3; i++ {
		if v, err := repo.Get(ctx, "k"); err != nil || v != "v" {
			t.Fatalf("Get = %q, %v", v, err)
		}
	}
	if inner.gets != 0 {
		t.Errorf("inner repo read %d times, want 0", inner.gets)
	}

	_ = repo.Remove(ctx, "k")
	if _, err := repo.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v after remove", err)
	}
	if _, err := repo.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("misses must not be cached as values, err = %v", err)
	}
	if inner.gets != 2 {
		t.Errorf("inner repo read %d times, want 2", inner.gets)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	ctx := context.Background()
	count := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kv_requests_total"}, []string{"method", "error"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "kv_duration_seconds"}, []string{"method", "error"})
	repo := NewMetrics(count, duration, NewMemoryRepository())

	_ = repo.Set(ctx, "k", "v")
	_, _ = repo.Get(ctx, "k")
	_, _ = repo.Get(ctx, "missing")

	if got := testutil.ToFloat64(count.WithLabelValues("Get", "false")); got != 2 {
		t.Errorf("Get successes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(count.WithLabelValues("Set", "false")); got != 1 {
		t.Errorf("Set successes = %v, want 1", got)
	}
}
