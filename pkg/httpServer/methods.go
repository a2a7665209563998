package httpServer

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/models"
	v1 "iframe-generator/pkg/models/api/v1"
)

func (h *handler) limitReached(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("func", "limitReached"),
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
		slog.String("ip", c.IP()),
	)

	log.Warn("rate limit reached for request")
	return errorHandler(c, fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please try again later"))
}

func (h *handler) checkEmbed(c *fiber.Ctx) error {
	url, err := queryURL(c, "url")
	if err != nil {
		return embedErrorHandler(c, err)
	}

	origin := c.Query("origin")
	if origin == "" {
		origin = c.Get(fiber.HeaderOrigin)
	}

	resp, err := h.embed.CheckEmbed(c.Context(), url, origin, c.Query("session"))
	if err != nil {
		return embedErrorHandler(c, err)
	}

	return c.JSON(resp)
}

func (h *handler) pageTitle(c *fiber.Ctx) error {
	url, err := queryURL(c, "url")
	if err != nil {
		return errorHandler(c, err)
	}

	title, err := h.embed.PageTitle(c.Context(), url)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(v1.PageTitleResponse{Title: title})
}

func (h *handler) getDefaults(c *fiber.Ctx) error {
	return c.JSON(h.snippets.Defaults())
}

func (h *handler) getPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets": embedconfig.PresetNames(),
	})
}

func (h *handler) iframeProps(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("func", "iframeProps"),
		slog.String("url", c.OriginalURL()),
	)

	var req v1.IframePropsRequest
	if err := h.parseBody(c, &req, log); err != nil {
		return errorHandler(c, err)
	}

	resp, err := h.snippets.IframeProps(c.Context(), req)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(resp)
}

func (h *handler) iframeHTML(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("func", "iframeHTML"),
		slog.String("url", c.OriginalURL()),
	)

	var req v1.IframeConfigRequest
	if err := h.parseBody(c, &req, log); err != nil {
		return errorHandler(c, err)
	}

	resp, err := h.snippets.IframeHTML(c.Context(), req.Config, c.QueryBool("save", false))
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(resp)
}

func (h *handler) applyPreset(c *fiber.Ctx) error {
	name := strings.ToLower(c.Params("name"))
	log := h.logger.With(
		slog.String("func", "applyPreset"),
		slog.String("preset", name),
	)

	var req v1.IframeConfigRequest
	if err := h.parseBody(c, &req, log); err != nil {
		return errorHandler(c, err)
	}

	cfg, err := h.snippets.ApplyPreset(c.Context(), req.Config, name)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(cfg)
}

func (h *handler) youtubeCode(c *fiber.Ctx) error {
	format := strings.ToLower(c.Params("format"))
	log := h.logger.With(
		slog.String("func", "youtubeCode"),
		slog.String("format", format),
	)

	var req v1.YoutubeRequest
	if err := h.parseBody(c, &req, log); err != nil {
		return errorHandler(c, err)
	}

	code, err := h.snippets.Youtube(c.Context(), format, req)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(v1.CodeResponse{Code: code})
}

func (h *handler) videoInfo(c *fiber.Ctx) error {
	info, err := h.snippets.VideoInfo(c.Query("input"))
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(info)
}

func (h *handler) preview(c *fiber.Ctx) error {
	url, err := queryURL(c, "url")
	if err != nil {
		return errorHandler(c, err)
	}

	page, err := h.snippets.Preview(c.Context(), url)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.Type("html").SendString(page)
}

func (h *handler) getHistory(c *fiber.Ctx) error {
	entries, err := h.configs.History(c.Context())
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(v1.HistoryResponse{Entries: entries})
}

func (h *handler) clearHistory(c *fiber.Ctx) error {
	if err := h.configs.ClearHistory(c.Context()); err != nil {
		return errorHandler(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) getConfig(c *fiber.Ctx) error {
	url, err := queryURL(c, "url")
	if err != nil {
		return errorHandler(c, err)
	}

	cfg, err := h.configs.Config(c.Context(), url)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(cfg)
}

func (h *handler) removeFromHistory(c *fiber.Ctx) error {
	url, err := queryURL(c, "url")
	if err != nil {
		return errorHandler(c, err)
	}

	if err := h.configs.RemoveFromHistory(c.Context(), url); err != nil {
		return errorHandler(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) errorMessage(c *fiber.Ctx) error {
	e := models.IframeError{
		Type:    models.IframeErrorType(strings.ToUpper(c.Params("type"))),
		Message: c.Query("message"),
	}

	return c.JSON(models.GetIframeErrorMessage(e))
}

// classifyError maps a browser load error message to its type and display text.
func (h *handler) classifyError(c *fiber.Ctx) error {
	log := h.logger.With(slog.String("func", "classifyError"))

	var req struct {
		Message string `json:"message"`
	}
	if err := h.parseBody(c, &req, log); err != nil {
		return errorHandler(c, err)
	}

	e := models.ClassifyLoadError(req.Message)

	return c.JSON(fiber.Map{
		"error":   e,
		"display": models.GetIframeErrorMessage(e),
	})
}

func (h *handler) parseBody(c *fiber.Ctx, dst any, log *slog.Logger) error {
	body := c.Body()
	if !isJSONObject(body) {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be a json object")
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("failed to parse request body", slog.String("error", err.Error()))
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return nil
}

func (h *handler) health(c *fiber.Ctx) error {
	return okHandler(c)
}

func (h *handler) metrics(c *fiber.Ctx) error {
	m := promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})

	return adaptor.HTTPHandler(m)(c)
}
