package configs

import (
	"context"
	"errors"
	"log/slog"

	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/history"
	"iframe-generator/pkg/models"
	"iframe-generator/pkg/urlnorm"
)

type historyStore interface {
	List(ctx context.Context) ([]history.Entry, error)
	LoadConfig(ctx context.Context, url string) (embedconfig.IframeConfig, error)
	Remove(ctx context.Context, url string) error
	Clear(ctx context.Context) error
}

type service struct {
	history historyStore
	logger  *slog.Logger
}

type Configs interface {
	History(ctx context.Context) ([]history.Entry, error)
	ClearHistory(ctx context.Context) error
	Config(ctx context.Context, url string) (embedconfig.IframeConfig, error)
	RemoveFromHistory(ctx context.Context, url string) error
}

func (s *service) History(ctx context.Context) ([]history.Entry, error) {
	log := s.logger.With(slog.String("method", "History"))

	entries, err := s.history.List(ctx)
	if err != nil {
		log.Error("failed to list history", slog.String("error", err.Error()))
		return nil, models.NewAppError(models.InternalServerErrorCode, "")
	}

	if entries == nil {
		entries = []history.Entry{}
	}

	return entries, nil
}

func (s *service) ClearHistory(ctx context.Context) error {
	log := s.logger.With(slog.String("method", "ClearHistory"))

	if err := s.history.Clear(ctx); err != nil {
		log.Error("failed to clear history", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}

	log.Info("history cleared")

	return nil
}

func (s *service) Config(ctx context.Context, url string) (embedconfig.IframeConfig, error) {
	log := s.logger.With(
		slog.String("method", "Config"),
		slog.String("url", url),
	)

	cfg, err := s.history.LoadConfig(ctx, url)
	if err != nil {
		switch {
		case errors.Is(err, urlnorm.ErrInvalidURL):
			return cfg, models.NewAppError(models.BadRequestErrorCode, "invalid url")
		case errors.Is(err, history.ErrNotFound):
			return cfg, models.NewAppError(models.NotFoundErrorCode, "no saved config for this url")
		}

		log.Error("failed to load config", slog.String("error", err.Error()))
		return cfg, models.NewAppError(models.InternalServerErrorCode, "")
	}

	return cfg, nil
}

func (s *service) RemoveFromHistory(ctx context.Context, url string) error {
	log := s.logger.With(
		slog.String("method", "RemoveFromHistory"),
		slog.String("url", url),
	)

	if err := s.history.Remove(ctx, url); err != nil {
		if errors.Is(err, urlnorm.ErrInvalidURL) {
			return models.NewAppError(models.BadRequestErrorCode, "invalid url")
		}

		log.Error("failed to remove history entry", slog.String("error", err.Error()))
		return models.NewAppError(models.InternalServerErrorCode, "")
	}

	return nil
}

func NewService(history historyStore, logger *slog.Logger) Configs {
	return &service{
		history: history,
		logger:  logger,
	}
}
