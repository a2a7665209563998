package embedconfig

const (
	defaultWidth      = "100"
	defaultHeight     = "600"
	defaultBorderSize = "0"
	defaultTimeoutMs  = 10000
	defaultRetryCount = 3
	defaultRetryDelay = 1000
	defaultFallback   = "<p>Failed to load, please refresh and try again</p>"
)

// Default returns a fully populated configuration.
func Default() IframeConfig {
	return IframeConfig{
		SchemaVersion:    CurrentSchemaVersion,
		URL:              "",
		Width:            defaultWidth,
		WidthUnit:        UnitPercent,
		Height:           defaultHeight,
		HeightUnit:       UnitPx,
		Border:           true,
		BorderSize:       defaultBorderSize,
		BorderStyle:      BorderNone,
		BorderColor:      "transparent",
		BorderRadiusName: "none",
		Scrolling:        true,
		AllowFullscreen:  true,
		BackgroundColor:  "#ffffff",
		Padding:          "0px",
		Sandbox:          []string{},
		Loading:          LoadingEager,
		Importance:       ImportanceAuto,
		Allow:            []string{"fullscreen"},

		Preload:         "auto",
		Timeout:         defaultTimeoutMs,
		FallbackContent: defaultFallback,
		CSP: CSP{
			Enabled: true,
			Directives: CSPDirectives{
				DefaultSrc: []string{"'self'"},
				ScriptSrc:  []string{"'self'"},
				StyleSrc:   []string{"'self'", "'unsafe-inline'"},
				ImgSrc:     []string{"'self'", "data:", "https:"},
				ConnectSrc: []string{"'self'"},
				FrameSrc:   []string{"'self'"},
			},
		},
		XFrameOptions: XFrameSameOrigin,
		SecurityHeaders: map[string]string{
			"X-Content-Type-Options": "nosniff",
			"X-XSS-Protection":       "1; mode=block",
		},
		DomainWhitelist: []string{},
		SecurityMode:    SecurityStrict,
		Performance: Performance{
			Preconnect:         true,
			Preload:            true,
			Priority:           ImportanceAuto,
			Timeout:            defaultTimeoutMs,
			RetryCount:         defaultRetryCount,
			RetryDelay:         defaultRetryDelay,
			ErrorFallback:      "<div>Failed to load, please refresh and try again</div>",
			LoadingIndicator:   true,
			LoadingAnimation:   AnimationSpinner,
			MonitorPerformance: true,
		},
	}
}

// ForURL is the record a freshly entered URL starts from.
func ForURL(url string) IframeConfig {
	cfg := Default()
	cfg.URL = url
	return cfg
}
