package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"iframe-generator/pkg/workers/pruner"
)

const minInterval = time.Second

type workerFunc = func(ctx context.Context) (interval time.Duration, err error)

type job struct {
	name string
	run  workerFunc
}

type worker struct {
	jobs   []job
	wg     sync.WaitGroup
	logger *slog.Logger
}

type Workers interface {
	Start(ctx context.Context) (err error)
	// Wait blocks until every job loop has returned after ctx is cancelled.
	Wait()
}

func (w *worker) Start(ctx context.Context) (err error) {
	for _, j := range w.jobs {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.run(ctx, j.name, j.run)
		}()
	}

	w.logger.Info("workers started", slog.Int("jobs", len(w.jobs)))

	return nil
}

func (w *worker) Wait() {
	w.wg.Wait()
}

func (w *worker) run(ctx context.Context, name string, f workerFunc) {
	logger := w.logger.With(slog.String("run_worker", name))

	for {
		if ctx.Err() != nil {
			return
		}

		interval, err := f(ctx)
		if err != nil {
			logger.Error(err.Error())
		}
		if interval < minInterval {
			interval = minInterval
		}

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func NewWorkers(
	pruner pruner.Worker,
	logger *slog.Logger,
) Workers {
	return &worker{
		jobs: []job{
			{name: "PruneHistory", run: pruner.PruneHistory},
			{name: "PurgeCaches", run: pruner.PurgeCaches},
		},
		logger: logger,
	}
}
