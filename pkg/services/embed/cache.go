package embed

import (
	"context"

	"iframe-generator/pkg/cache"
	v1 "iframe-generator/pkg/models/api/v1"
)

type cacheMiddleware struct {
	svc    Embed
	titles *cache.SimpleCache
}

func (c *cacheMiddleware) CheckEmbed(ctx context.Context, url, origin, session string) (v1.EmbedCheckResponse, error) {
	return c.svc.CheckEmbed(ctx, url, origin, session)
}

func (c *cacheMiddleware) PageTitle(ctx context.Context, url string) (title string, err error) {
	if v, ok := c.titles.Get(url); ok {
		return v.(string), nil
	}

	title, err = c.svc.PageTitle(ctx, url)
	if err != nil {
		return
	}

	c.titles.Set(url, title)

	return
}

// NewCacheMiddleware remembers fetched page titles. Embed verdicts are not
// cached here because they depend on the embedding origin.
func NewCacheMiddleware(svc Embed, titles *cache.SimpleCache) Embed {
	return &cacheMiddleware{
		svc:    svc,
		titles: titles,
	}
}
