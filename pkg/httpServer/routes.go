package httpServer

func (h *handler) registerAPI() {
	h.server.Get("/api/check-embed", h.loggerMiddleware, h.checkEmbed)

	apiv1 := h.server.Group("/api/v1", h.loggerMiddleware)
	{
		iframe := apiv1.Group("/iframe")

		iframe.Get("/defaults", h.getDefaults)
		iframe.Get("/presets", h.getPresets)
		iframe.Post("/props", h.iframeProps)
		iframe.Post("/html", h.iframeHTML)
		iframe.Post("/preset/:name", h.applyPreset)
	}

	{
		youtube := apiv1.Group("/youtube")

		youtube.Get("/video-info", h.videoInfo)
		youtube.Post("/:format", h.youtubeCode)
	}

	{
		history := apiv1.Group("/history")

		history.Get("", h.getHistory)
		history.Delete("", h.clearHistory)
		history.Get("/config", h.getConfig)
		history.Delete("/config", h.removeFromHistory)
	}

	{
		errors := apiv1.Group("/errors")

		errors.Post("/classify", h.classifyError)
		errors.Get("/:type", h.errorMessage)
	}

	apiv1.Get("/preview", h.securityHeadersMiddleware, h.preview)
	apiv1.Get("/page-title", h.pageTitle)

	apiv1.Get("/health", h.health)
	apiv1.Get("/metrics", h.requireMetrics(), h.metrics)
}
