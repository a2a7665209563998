package kv

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsMiddleware struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	repo        Repository
}

func (m *metricsMiddleware) Get(ctx context.Context, key string) (value string, err error) {
	defer func(s time.Time) {
		labels := []string{
			"Get", strconv.FormatBool(err != nil && !errors.Is(err, ErrNotFound)),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.Get(ctx, key)
}

func (m *metricsMiddleware) Set(ctx context.Context, key, value string) (err error) {
	defer func(s time.Time) {
		labels := []string{
			"Set", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.Set(ctx, key, value)
}

func (m *metricsMiddleware) Remove(ctx context.Context, key string) (err error) {
	defer func(s time.Time) {
		labels := []string{
			"Remove", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.Remove(ctx, key)
}

func NewMetrics(reqCount *prometheus.CounterVec, reqDuration *prometheus.HistogramVec, repo Repository) Repository {
	return &metricsMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		repo:        repo,
	}
}
