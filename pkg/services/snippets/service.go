package snippets

import (
	"context"
	"errors"
	"log/slog"

	"iframe-generator/pkg/device"
	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/history"
	"iframe-generator/pkg/iframewrap"
	"iframe-generator/pkg/markup"
	"iframe-generator/pkg/models"
	v1 "iframe-generator/pkg/models/api/v1"
	"iframe-generator/pkg/urlnorm"
	"iframe-generator/pkg/youtube"
)

const (
	FormatEmbedURL   = "embed-url"
	FormatLite       = "lite"
	FormatComponent  = "component"
	FormatLiteIframe = "lite-iframe"
	FormatStandard   = "standard"
	FormatDataURL    = "data-url"
)

var youtubeFormats = map[string]func(youtube.Config) string{
	FormatEmbedURL:   youtube.GenerateEmbedURL,
	FormatLite:       youtube.GenerateLiteYoutubeHTML,
	FormatComponent:  youtube.GenerateWebComponentCode,
	FormatLiteIframe: youtube.GenerateLiteIFrameCode,
	FormatStandard:   youtube.GenerateStandardIframeCode,
	FormatDataURL:    youtube.GenerateDataURLIframeCode,
}

type configs interface {
	SaveConfig(ctx context.Context, cfg embedconfig.IframeConfig) (embedconfig.IframeConfig, error)
	LoadConfig(ctx context.Context, url string) (embedconfig.IframeConfig, error)
}

type service struct {
	configs configs
	logger  *slog.Logger
}

type Snippets interface {
	IframeProps(ctx context.Context, req v1.IframePropsRequest) (v1.IframePropsResponse, error)
	IframeHTML(ctx context.Context, cfg embedconfig.IframeConfig, save bool) (v1.IframeHTMLResponse, error)
	ApplyPreset(ctx context.Context, cfg embedconfig.IframeConfig, name string) (embedconfig.IframeConfig, error)
	Defaults() embedconfig.IframeConfig
	Youtube(ctx context.Context, format string, req v1.YoutubeRequest) (string, error)
	VideoInfo(input string) (youtube.VideoInfo, error)
	Preview(ctx context.Context, url string) (string, error)
}

func (s *service) IframeProps(ctx context.Context, req v1.IframePropsRequest) (v1.IframePropsResponse, error) {
	cfg, err := s.prepare(req.Config)
	if err != nil {
		return v1.IframePropsResponse{}, err
	}

	opts := []markup.Option{markup.WithCustomStyles(req.CustomStyles)}

	var size *device.SizeInfo
	if req.DeviceType != "" {
		t, err := device.Parse(req.DeviceType)
		if err != nil {
			return v1.IframePropsResponse{}, models.NewAppError(models.BadRequestErrorCode, err.Error())
		}
		opts = append(opts, markup.WithDevice(string(t), device.MarkupPresets()))

		info := device.Describe(
			device.LeadingInt(cfg.Width),
			string(cfg.WidthUnit),
			device.LeadingInt(cfg.Height),
			req.ViewportWidth,
			t,
		)
		size = &info
	}

	res := markup.GenerateIframeProps(cfg, opts...)

	return v1.IframePropsResponse{
		Props:       res.Props,
		StyleString: res.StyleString,
		Preview:     markup.PreviewStyles(cfg),
		Size:        size,
	}, nil
}

func (s *service) IframeHTML(ctx context.Context, cfg embedconfig.IframeConfig, save bool) (v1.IframeHTMLResponse, error) {
	log := s.logger.With(
		slog.String("method", "IframeHTML"),
		slog.String("url", cfg.URL),
		slog.Bool("save", save),
	)

	cfg, err := s.prepare(cfg)
	if err != nil {
		return v1.IframeHTMLResponse{}, err
	}

	resp := v1.IframeHTMLResponse{HTML: markup.GenerateHTML(cfg)}
	if !save {
		return resp, nil
	}

	saved, err := s.configs.SaveConfig(ctx, cfg)
	if err != nil {
		if errors.Is(err, urlnorm.ErrInvalidURL) {
			return v1.IframeHTMLResponse{}, models.NewAppError(models.BadRequestErrorCode, "a valid url is required to save a config")
		}

		log.Error("failed to save config", slog.String("error", err.Error()))
		return v1.IframeHTMLResponse{}, models.NewAppError(models.InternalServerErrorCode, "")
	}
	resp.Config = &saved

	return resp, nil
}

func (s *service) ApplyPreset(ctx context.Context, cfg embedconfig.IframeConfig, name string) (embedconfig.IframeConfig, error) {
	log := s.logger.With(
		slog.String("method", "ApplyPreset"),
		slog.String("preset", name),
	)

	out, err := embedconfig.ApplyPreset(cfg, name)
	if err != nil {
		if errors.Is(err, embedconfig.ErrUnknownPreset) {
			return cfg, models.NewAppError(models.NotFoundErrorCode, "unknown preset")
		}

		log.Error("failed to apply preset", slog.String("error", err.Error()))
		return cfg, models.NewAppError(models.InternalServerErrorCode, "")
	}

	return out.Sanitize(), nil
}

func (s *service) Defaults() embedconfig.IframeConfig {
	return embedconfig.Default()
}

func (s *service) Youtube(ctx context.Context, format string, req v1.YoutubeRequest) (string, error) {
	generate, ok := youtubeFormats[format]
	if !ok {
		return "", models.NewAppError(models.NotFoundErrorCode, "unknown youtube format")
	}

	cfg := youtube.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	if req.URL != "" {
		cfg.VideoID = youtube.ExtractVideoInfo(req.URL).VideoID
	}
	if cfg.VideoID == "" {
		return "", models.NewAppError(models.BadRequestErrorCode, "video id is required")
	}

	return generate(cfg.Sanitize()), nil
}

func (s *service) VideoInfo(input string) (youtube.VideoInfo, error) {
	info := youtube.ExtractVideoInfo(input)
	if info.VideoID == "" {
		return info, models.NewAppError(models.BadRequestErrorCode, "no video id found")
	}

	return info, nil
}

// Preview renders the stored config for url, or the defaults when nothing
// was saved for it yet.
func (s *service) Preview(ctx context.Context, url string) (string, error) {
	log := s.logger.With(
		slog.String("method", "Preview"),
		slog.String("url", url),
	)

	if url == "" || !urlnorm.IsValidURL(url) {
		return "", models.NewAppError(models.BadRequestErrorCode, "invalid url")
	}

	cfg, err := s.configs.LoadConfig(ctx, url)
	switch {
	case errors.Is(err, history.ErrNotFound):
		normalized, nerr := urlnorm.NormalizeURL(url)
		if nerr != nil {
			return "", models.NewAppError(models.BadRequestErrorCode, "invalid url")
		}
		cfg = embedconfig.ForURL(normalized)
	case err != nil:
		log.Error("failed to load config", slog.String("error", err.Error()))
		return "", models.NewAppError(models.InternalServerErrorCode, "")
	}

	cfg = cfg.Sanitize()
	page, err := iframewrap.WrapHTML(markup.GenerateHTML(cfg), iframewrap.Options{
		URL:            cfg.URL,
		ContainerStyle: markup.PreviewStyles(cfg).String(),
	})
	if err != nil {
		log.Error("failed to render preview", slog.String("error", err.Error()))
		return "", models.NewAppError(models.InternalServerErrorCode, "")
	}

	return page, nil
}

// prepare cleans up free-form fields and rejects what cannot be cleaned.
func (s *service) prepare(cfg embedconfig.IframeConfig) (embedconfig.IframeConfig, error) {
	cfg = cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, models.NewAppError(models.BadRequestErrorCode, err.Error())
	}

	return cfg, nil
}

func NewService(configs configs, logger *slog.Logger) Snippets {
	return &service{
		configs: configs,
		logger:  logger,
	}
}
