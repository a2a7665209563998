package httpServer

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	totalRequests   *prometheus.CounterVec
	durationSec     *prometheus.HistogramVec
	inflightRequest *prometheus.GaugeVec
}

func (m *metrics) metricsMiddleware(ctx *fiber.Ctx) (err error) {
	s := time.Now()
	method := string(ctx.Context().Method())

	m.inflightRequest.WithLabelValues(method).Inc()
	defer m.inflightRequest.WithLabelValues(method).Dec()

	err = ctx.Next()

	// the matched route is only known once the chain has run
	routeLabel := "<unmatched>"
	if r := ctx.Route(); r != nil && r.Path != "" && r.Path != "/" {
		routeLabel = r.Path
	}

	labelsWithCode := []string{
		routeLabel,
		method,
		strconv.Itoa(ctx.Response().StatusCode()),
	}

	m.totalRequests.WithLabelValues(labelsWithCode...).Inc()
	m.durationSec.WithLabelValues(labelsWithCode...).Observe(time.Since(s).Seconds())

	return
}

func newMetrics(namespace, subsystem string, reg prometheus.Registerer) *metrics {
	labels := []string{"route", "method", "code"}
	inflightLabels := []string{"method"}

	t := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "Total number of requests",
	}, labels)
	d := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_duration",
		Help:      "Duration of requests",
		Buckets: []float64{
			0.01, 0.025, 0.05, 0.1,
			0.25, 0.5, 0.75, 1,
			1.5, 2, 3, 5, 8, 12,
		},
	}, labels)
	i := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_inflight",
		Help:      "Number of inflight requests",
	}, inflightLabels)

	reg.MustRegister(
		t,
		d,
		i,
	)

	return &metrics{
		totalRequests:   t,
		durationSec:     d,
		inflightRequest: i,
	}
}
