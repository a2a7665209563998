package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"iframe-generator/pkg/cache"
	"iframe-generator/pkg/clients/probe"
	"iframe-generator/pkg/constants"
	"iframe-generator/pkg/embedcheck"
	"iframe-generator/pkg/history"
	"iframe-generator/pkg/httpServer"
	configsService "iframe-generator/pkg/services/configs"
	embedService "iframe-generator/pkg/services/embed"
	snippetsService "iframe-generator/pkg/services/snippets"
	"iframe-generator/pkg/workers"
	"iframe-generator/pkg/workers/pruner"
)

type defaultRegistry struct {
	prometheus.Registerer
	prometheus.Gatherer
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() (err error) {
	// Tools
	config := loadConfig()
	if config == nil {
		fmt.Println("failed to load configuration")
		return
	}

	logLevel := slog.LevelInfo
	if level, ok := logLevels[config.System.LogLevel]; ok {
		logLevel = level
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Metrics
	dbRequestsCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.DbSubsystem,
			Name:      "db_requests_count",
			Help:      "History store requests count",
		},
		[]string{"method", "error"},
	)

	dbRequestsDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.DbSubsystem,
			Name:      "db_requests_duration",
			Help:      "History store requests duration",
		},
		[]string{"method", "error"},
	)

	workersRunCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.WorkersSubsystem,
			Name:      "workers_run_count",
			Help:      "Workers run count",
		},
		[]string{"method", "error"},
	)

	workersRunDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Metrics.Namespace,
			Subsystem: config.Metrics.WorkersSubsystem,
			Name:      "workers_run_duration",
			Help:      "Workers run duration",
		},
		[]string{"method", "error"},
	)

	prometheus.MustRegister(
		dbRequestsCount,
		dbRequestsDuration,
		workersRunCount,
		workersRunDuration,
	)

	// History store
	store, closeStore, err := openHistoryStore(context.Background(), config, dbRequestsCount, dbRequestsDuration, logger)
	if err != nil {
		logger.Error("failed to open history store", slog.String("error", err.Error()))
		return
	}
	defer closeStore()

	// Clients
	headersCache := probe.NewHeadersCache(config.Probe.MaxCacheEntries, config.Probe.CacheTTL)
	probeMetrics := probe.NewMetrics(config.Metrics.Namespace, config.Metrics.ProbeSubsystem)
	prober := probe.NewClient(probe.Config{
		Timeout:        config.Probe.Timeout,
		RetryMax:       config.Probe.RetryMax,
		RequestsPerSec: config.Probe.RequestsPerSec,
		Burst:          config.Probe.Burst,
		UserAgent:      config.Probe.UserAgent,
		BreakerTimeout: config.Probe.BreakerTimeout,

		AllowPrivateNetworks: config.Probe.AllowPrivateNetworks,
	}, headersCache.WithMetrics(probeMetrics), probeMetrics, logger)

	// Services
	historySvc := history.NewService(store, logger)
	checker := embedcheck.NewChecker(prober, config.Probe.CheckTimeout, logger)

	sessions := cache.NewSimpleCache(config.Probe.SessionTTL)
	titles := cache.NewSimpleCache(config.Probe.TitleCacheTTL)

	embedSvc := embedService.NewService(checker, prober, sessions, logger)
	embedSvc = embedService.NewCacheMiddleware(embedSvc, titles)

	snippetsSvc := snippetsService.NewService(historySvc, logger)
	configsSvc := configsService.NewService(historySvc, logger)

	// Workers
	prunerWorker := pruner.NewWorker(historySvc, logger, headersCache, sessions, titles, prober)
	prunerWorker = pruner.NewMetrics(workersRunCount, workersRunDuration, prunerWorker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := workers.NewWorkers(prunerWorker, logger)
	if err = jobs.Start(ctx); err != nil {
		logger.Error("failed to start workers", slog.String("error", err.Error()))
		return
	}

	// HTTP Server
	accessTokens := strings.Split(config.System.AccessTokens, ";")
	app := fiber.New(fiber.Config{
		BodyLimit: constants.MaxRequestBodySize,
	})
	server := httpServer.New(
		app,
		embedSvc,
		snippetsSvc,
		configsSvc,
		defaultRegistry{prometheus.DefaultRegisterer, prometheus.DefaultGatherer},
		accessTokens,
		config.Metrics.Namespace,
		config.Metrics.ServerSubsystem,
		logger,
	)
	if server == nil {
		return fmt.Errorf("failed to create HTTP server handler")
	}

	server.RegisterRoutes()

	go func() {
		if err := app.Listen(":" + config.System.Port); err != nil {
			logger.Error("error starting server", slog.String("err", err.Error()))
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	<-signalChan

	cancel()
	jobs.Wait()

	err = app.ShutdownWithTimeout(time.Second * 5)
	if err != nil {
		logger.Error("server shut down error", slog.String("err", err.Error()))
		return err
	}

	return err
}
