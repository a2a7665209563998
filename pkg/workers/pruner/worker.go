package pruner

import (
	"context"
	"log/slog"
	"time"
)

type history interface {
	Prune(ctx context.Context) (trimmed, orphans int, err error)
}

type expiring interface {
	Purge() int
}

type prunerWorker struct {
	history history
	caches  []expiring
	logger  *slog.Logger
}

type Worker interface {
	PruneHistory(ctx context.Context) (interval time.Duration, err error)
	PurgeCaches(ctx context.Context) (interval time.Duration, err error)
}

// PruneHistory caps the stored history and drops configs no entry points to.
func (w *prunerWorker) PruneHistory(ctx context.Context) (interval time.Duration, err error) {
	const (
		failureInterval = 5 * time.Second
		successInterval = 1 * time.Hour
	)

	log := w.logger.With("worker", "PruneHistory")
	log.Debug("pruning history")

	interval = successInterval

	trimmed, orphans, err := w.history.Prune(ctx)
	if err != nil {
		interval = failureInterval
		return
	}

	if trimmed > 0 || orphans > 0 {
		log.Info("pruned history", slog.Int("trimmed", trimmed), slog.Int("orphans", orphans))
	}

	return
}

func (w *prunerWorker) PurgeCaches(ctx context.Context) (interval time.Duration, err error) {
	const successInterval = 5 * time.Minute

	log := w.logger.With("worker", "PurgeCaches")

	removed := 0
	for _, c := range w.caches {
		removed += c.Purge()
	}
	if removed > 0 {
		log.Debug("purged expired cache entries", slog.Int("removed", removed))
	}

	return successInterval, nil
}

func NewWorker(history history, logger *slog.Logger, caches ...expiring) Worker {
	return &prunerWorker{
		history: history,
		caches:  caches,
		logger:  logger,
	}
}
