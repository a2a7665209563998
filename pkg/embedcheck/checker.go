package embedcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"iframe-generator/pkg/clients/probe"
	"iframe-generator/pkg/urlnorm"
)

// ErrProbeFailed means embeddability could not be determined because the
// target could not be fetched. It is never reported as "not embeddable".
var ErrProbeFailed = errors.New("cannot determine embeddability")

type prober interface {
	Probe(ctx context.Context, url string) (probe.Response, error)
}

type Checker struct {
	prober  prober
	group   singleflight.Group
	timeout time.Duration
	logger  *slog.Logger
}

// Check probes rawURL and classifies its headers for the embedding origin,
// which may be empty. Concurrent checks of the same URL share one probe.
func (c *Checker) Check(ctx context.Context, rawURL, embeddingOrigin string) (Verdict, error) {
	log := c.logger.With(
		slog.String("method", "Check"),
		slog.String("url", rawURL),
		slog.String("origin", embeddingOrigin),
	)

	target, err := urlnorm.NormalizeURL(rawURL)
	if err != nil {
		return Verdict{}, err
	}
	if !urlnorm.IsValidURL(rawURL) {
		return Verdict{}, fmt.Errorf("%w: %s", urlnorm.ErrInvalidURL, rawURL)
	}

	ch := c.group.DoChan(target, func() (any, error) {
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		return c.prober.Probe(probeCtx, target)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Verdict{}, fmt.Errorf("%w: %w", ErrProbeFailed, ctx.Err())
	case res = <-ch:
	}

	if res.Err != nil {
		log.Error("probe failed", slog.String("error", res.Err.Error()))
		return Verdict{}, fmt.Errorf("%w: %w", ErrProbeFailed, res.Err)
	}

	resp := res.Val.(probe.Response)
	verdict := Classify(headersOf(resp), WithTargetURL(target), WithEmbeddingOrigin(embeddingOrigin))
	log.Debug("embed check finished",
		slog.Bool("can_embed", verdict.CanEmbed),
		slog.Int("status", resp.StatusCode),
		slog.Bool("shared", res.Shared))

	return verdict, nil
}

func headersOf(resp probe.Response) http.Header {
	if resp.Header == nil {
		return http.Header{}
	}
	return resp.Header
}

func NewChecker(p prober, timeout time.Duration, logger *slog.Logger) *Checker {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Checker{
		prober:  p,
		timeout: timeout,
		logger:  logger,
	}
}
