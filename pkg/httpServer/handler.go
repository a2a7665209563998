package httpServer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/history"
	v1 "iframe-generator/pkg/models/api/v1"
	"iframe-generator/pkg/youtube"
)

type TokenPermissions struct {
	Metrics bool
}

type embed interface {
	CheckEmbed(ctx context.Context, url, origin, session string) (v1.EmbedCheckResponse, error)
	PageTitle(ctx context.Context, url string) (string, error)
}

type snippets interface {
	IframeProps(ctx context.Context, req v1.IframePropsRequest) (v1.IframePropsResponse, error)
	IframeHTML(ctx context.Context, cfg embedconfig.IframeConfig, save bool) (v1.IframeHTMLResponse, error)
	ApplyPreset(ctx context.Context, cfg embedconfig.IframeConfig, name string) (embedconfig.IframeConfig, error)
	Defaults() embedconfig.IframeConfig
	Youtube(ctx context.Context, format string, req v1.YoutubeRequest) (string, error)
	VideoInfo(input string) (youtube.VideoInfo, error)
	Preview(ctx context.Context, url string) (string, error)
}

type configs interface {
	History(ctx context.Context) ([]history.Entry, error)
	ClearHistory(ctx context.Context) error
	Config(ctx context.Context, url string) (embedconfig.IframeConfig, error)
	RemoveFromHistory(ctx context.Context, url string) error
}

// Registry is where the HTTP metrics are registered and read back from.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	server       *fiber.App
	logger       *slog.Logger
	embed        embed
	snippets     snippets
	configs      configs
	registry     Registry
	namespace    string
	subsystem    string
	accessTokens map[string]TokenPermissions
}

// New parses accessTokens entries of the form "md5hash" or "md5hash:perm1,perm2".
// A token without a permission list gets every permission.
func New(
	server *fiber.App,
	embed embed,
	snippets snippets,
	configs configs,
	registry Registry,
	accessTokens []string,
	namespace string,
	subsystem string,
	logger *slog.Logger,
) *handler {
	accessTokensMap := make(map[string]TokenPermissions)

	for _, token := range accessTokens {
		hash, perms, hasPerms := strings.Cut(token, ":")
		tokenHash := strings.ToLower(strings.TrimSpace(hash))

		if tokenHash == "" {
			continue
		}

		permissions := TokenPermissions{Metrics: true}

		if hasPerms {
			permissions = TokenPermissions{}

			for _, perm := range strings.Split(perms, ",") {
				switch strings.TrimSpace(strings.ToLower(perm)) {
				case "metrics", "all":
					permissions.Metrics = true
				}
			}
		}

		accessTokensMap[tokenHash] = permissions
	}

	h := &handler{
		server:       server,
		embed:        embed,
		snippets:     snippets,
		configs:      configs,
		registry:     registry,
		namespace:    namespace,
		subsystem:    subsystem,
		accessTokens: accessTokensMap,
		logger:       logger,
	}

	return h
}
