package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"iframe-generator/pkg/repositories/kv"
)

// openHistoryStore builds the configured key-value backend, wrapped in the
// read cache and the metrics decorator. closeFn releases its connections.
func openHistoryStore(
	ctx context.Context,
	config *Config,
	reqCount *prometheus.CounterVec,
	reqDuration *prometheus.HistogramVec,
	logger *slog.Logger,
) (store kv.Repository, closeFn func(), err error) {
	closeFn = func() {}

	switch config.History.Backend {
	case historyBackendPostgres:
		connPool, cerr := connectPostgres(ctx, config, logger)
		if cerr != nil {
			return nil, closeFn, cerr
		}
		if err = kv.EnsureSchema(ctx, connPool); err != nil {
			connPool.Close()
			return nil, closeFn, fmt.Errorf("failed to prepare history schema: %w", err)
		}
		store = kv.NewPostgresRepository(connPool)
		closeFn = connPool.Close

	case historyBackendRedis:
		rdb, cerr := connectRedis(ctx, config)
		if cerr != nil {
			return nil, closeFn, cerr
		}
		store = kv.NewRedisRepository(rdb, config.Redis.KeyPrefix)
		closeFn = func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close Redis client", slog.String("error", err.Error()))
			}
		}

	default:
		store = kv.NewMemoryRepository()
	}

	logger.Info("history store ready", slog.String("backend", config.History.Backend))

	store = kv.NewCache(store, config.History.CacheTTL)
	store = kv.NewMetrics(reqCount, reqDuration, store)

	return store, closeFn, nil
}

func connectPostgres(ctx context.Context, config *Config, logger *slog.Logger) (connPool *pgxpool.Pool, err error) {
	cfg, err := newPostgresConfig(config, logger)
	if err != nil {
		return
	}

	connPool, err = pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		err = fmt.Errorf("failed to create a new Postgres connection pool: %w", err)
		return
	}

	if err = connPool.Ping(ctx); err != nil {
		connPool.Close()
		err = fmt.Errorf("failed to ping the Postgres database: %w", err)
		return nil, err
	}

	return
}

func newPostgresConfig(config *Config, logger *slog.Logger) (dbConfig *pgxpool.Config, err error) {
	// history is a handful of small rows, a few connections are plenty
	const defaultMaxConns = int32(4)
	const defaultMinConns = int32(1)
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 30
	const defaultHealthCheckPeriod = time.Minute
	const defaultConnectTimeout = time.Second * 5
	const DATABASE_URL string = "postgres://%s:%s@%s:%s/%s"

	user := url.QueryEscape(config.DB.User)
	password := url.QueryEscape(config.DB.Password)

	pgUrl := fmt.Sprintf(DATABASE_URL, user, password, config.DB.Host, config.DB.Port, config.DB.Name)
	dbConfig, err = pgxpool.ParseConfig(pgUrl)
	if err != nil {
		err = fmt.Errorf("failed to parse Postgres connection string: %w", err)
		return
	}

	dbConfig.MaxConns = defaultMaxConns
	dbConfig.MinConns = defaultMinConns
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	dbConfig.BeforeClose = func(c *pgx.Conn) {
		logger.Debug("closing history database connection", slog.Uint64("pid", uint64(c.PgConn().PID())))
	}

	return
}

func connectRedis(ctx context.Context, config *Config) (rdb *redis.Client, err error) {
	const pingTimeout = 10 * time.Second

	if config.Redis.URL != "" {
		opt, perr := redis.ParseURL(config.Redis.URL)
		if perr != nil {
			err = fmt.Errorf("failed to parse Redis URL: %w", perr)
			return
		}
		rdb = redis.NewClient(opt)
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err = rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		err = fmt.Errorf("failed to ping Redis: %w", err)
		return nil, err
	}

	return
}
