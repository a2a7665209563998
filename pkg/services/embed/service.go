package embed

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"iframe-generator/pkg/cache"
	"iframe-generator/pkg/embedcheck"
	"iframe-generator/pkg/models"
	v1 "iframe-generator/pkg/models/api/v1"
	"iframe-generator/pkg/urlnorm"
)

const (
	ReasonMissingURL  = "URL parameter is missing or malformed"
	ReasonProbeFailed = "server error, unable to check embedding permissions"
	ReasonSuperseded  = "check superseded by a newer one for this session"
)

type checker interface {
	Check(ctx context.Context, rawURL, embeddingOrigin string) (embedcheck.Verdict, error)
}

type titles interface {
	FetchTitle(ctx context.Context, url string) (string, error)
}

type service struct {
	checker checker
	titles  titles
	logger  *slog.Logger

	sessionsMu sync.Mutex
	sessions   *cache.SimpleCache
}

type Embed interface {
	// CheckEmbed reports whether url can be framed by origin. With a non-empty
	// session, only the latest check of that session is answered; earlier
	// ones fail with a 409 AppError.
	CheckEmbed(ctx context.Context, url, origin, session string) (v1.EmbedCheckResponse, error)
	PageTitle(ctx context.Context, url string) (string, error)
}

func (s *service) CheckEmbed(ctx context.Context, url, origin, session string) (v1.EmbedCheckResponse, error) {
	log := s.logger.With(
		slog.String("method", "CheckEmbed"),
		slog.String("url", url),
		slog.String("origin", origin),
	)

	if url == "" || !urlnorm.IsValidURL(url) {
		return v1.EmbedCheckResponse{}, models.NewAppError(models.BadRequestErrorCode, ReasonMissingURL)
	}

	var (
		tracker *embedcheck.Tracker
		ticket  embedcheck.Ticket
	)
	if session != "" {
		tracker = s.tracker(session)
		ticket = tracker.Begin(url)
	}

	verdict, err := s.checker.Check(ctx, url, origin)
	if tracker != nil && !tracker.Current(ticket) {
		log.Debug("dropping superseded check", slog.String("session", session))
		return v1.EmbedCheckResponse{}, models.NewAppError(models.ConflictErrorCode, ReasonSuperseded)
	}

	if err != nil {
		if errors.Is(err, urlnorm.ErrInvalidURL) {
			return v1.EmbedCheckResponse{}, models.NewAppError(models.BadRequestErrorCode, ReasonMissingURL)
		}

		log.Error("failed to check embedding", slog.String("error", err.Error()))
		return v1.EmbedCheckResponse{}, models.NewAppError(models.InternalServerErrorCode, ReasonProbeFailed)
	}

	return v1.EmbedCheckResponse{
		CanEmbed:       verdict.CanEmbed,
		Reason:         verdict.Reason,
		Type:           verdict.Type,
		AllowedOrigins: verdict.AllowedOrigins,
	}, nil
}

func (s *service) PageTitle(ctx context.Context, url string) (string, error) {
	log := s.logger.With(
		slog.String("method", "PageTitle"),
		slog.String("url", url),
	)

	normalized, err := urlnorm.NormalizeURL(url)
	if err != nil || !urlnorm.IsValidURL(url) {
		return "", models.NewAppError(models.BadRequestErrorCode, "invalid url")
	}

	title, err := s.titles.FetchTitle(ctx, normalized)
	if err != nil {
		log.Warn("failed to fetch page title", slog.String("error", err.Error()))
		return "", models.NewAppError(models.NotFoundErrorCode, "page title not available")
	}

	return title, nil
}

// tracker returns the session's tracker and extends its lifetime.
func (s *service) tracker(session string) *embedcheck.Tracker {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	t, ok := s.sessions.Get(session)
	if !ok {
		t = &embedcheck.Tracker{}
	}
	s.sessions.Set(session, t)

	return t.(*embedcheck.Tracker)
}

// NewService builds the embed service. sessions holds per-session trackers;
// its TTL decides how long an idle session is remembered.
func NewService(checker checker, titles titles, sessions *cache.SimpleCache, logger *slog.Logger) Embed {
	return &service{
		checker:  checker,
		titles:   titles,
		sessions: sessions,
		logger:   logger,
	}
}
