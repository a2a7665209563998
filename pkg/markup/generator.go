// Package markup turns an embed configuration into iframe attributes, inline
// styles and a copy-ready HTML snippet.
package markup

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"iframe-generator/pkg/embedconfig"
)

const (
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
	DeviceMobile  = "mobile"
)

// DevicePreset carries the CSS sizes a device frame forces on the iframe.
type DevicePreset struct {
	Width  string
	Height string
}

type Result struct {
	Props       *Attributes `json:"props"`
	Style       *Style      `json:"style"`
	StyleString string      `json:"styleString"`
}

type options struct {
	deviceType   string
	presets      map[string]DevicePreset
	customStyles *Style
}

type Option func(*options)

// WithDevice sizes the iframe for a simulated device frame. Without presets
// the configured dimensions are used as is.
func WithDevice(deviceType string, presets map[string]DevicePreset) Option {
	return func(o *options) {
		if deviceType != "" {
			o.deviceType = deviceType
		}
		o.presets = presets
	}
}

// WithCustomStyles overlays styles on top of the "border: none" base.
func WithCustomStyles(s *Style) Option {
	return func(o *options) {
		o.customStyles = s
	}
}

// GenerateIframeProps builds the attribute map and inline style for cfg.
// Optional attributes are added only when their driving field is set.
func GenerateIframeProps(cfg embedconfig.IframeConfig, opts ...Option) Result {
	o := options{deviceType: DeviceDesktop}
	for _, opt := range opts {
		opt(&o)
	}

	style := NewStyle(StyleEntry{"border", "none"})
	if o.customStyles != nil {
		for _, e := range o.customStyles.Entries() {
			style.Set(e.Property, e.Value)
		}
	}

	configuredWidth := cfg.Width + string(cfg.WidthUnit)
	configuredHeight := cfg.Height + string(cfg.HeightUnit)

	preset, hasPreset := o.presets[o.deviceType]
	switch {
	case o.presets == nil:
		style.Set("width", configuredWidth)
		style.Set("height", configuredHeight)
	case o.deviceType == DeviceDesktop:
		style.Set("width", configuredWidth)
		style.Set("height", "100%")
	case hasPreset:
		style.Set("width", "100%")
		style.Set("height", preset.Height)
	default:
		style.Set("width", "100%")
		style.Set("height", configuredHeight)
	}

	props := NewAttributes()
	props.Set("src", cfg.URL)
	if cfg.CustomClass != "" {
		props.Set("className", cfg.CustomClass)
	}
	props.Set("loading", string(cfg.Loading))
	props.Set("style", style)

	if cfg.AllowFullscreen {
		props.Set("allowFullScreen", true)
		props.Set("allow", strings.Join(withFullscreen(cfg.Allow), "; "))
		props.Set("webkitallowfullscreen", "true")
		props.Set("mozallowfullscreen", "true")
	}
	if !cfg.Scrolling {
		props.Set("scrolling", "no")
	}
	if cfg.Title != "" {
		props.Set("title", cfg.Title)
	}
	if cfg.AriaLabel != "" {
		props.Set("aria-label", cfg.AriaLabel)
	}
	if cfg.Name != "" {
		props.Set("name", cfg.Name)
	}
	if len(cfg.Sandbox) > 0 {
		props.Set("sandbox", strings.Join(cfg.Sandbox, " "))
	}
	if cfg.ReferrerPolicy != "" {
		props.Set("referrerPolicy", cfg.ReferrerPolicy)
	}
	if cfg.Importance != "" {
		props.Set("importance", string(cfg.Importance))
	}

	return Result{
		Props:       props,
		Style:       style,
		StyleString: style.String(),
	}
}

func withFullscreen(allow []string) []string {
	out := make([]string, 0, len(allow)+1)
	for _, feature := range append(slices.Clone(allow), "fullscreen") {
		feature = strings.TrimSpace(feature)
		if feature == "" || slices.Contains(out, feature) {
			continue
		}
		out = append(out, feature)
	}
	return out
}

// SnippetStyle is the inline style written into the copy-out snippet.
func SnippetStyle(cfg embedconfig.IframeConfig) *Style {
	border := "none"
	if cfg.Border {
		border = fmt.Sprintf("%spx %s %s", cfg.BorderSize, cfg.BorderStyle, cfg.BorderColor)
	}

	return NewStyle(
		StyleEntry{"backgroundColor", cfg.BackgroundColor},
		StyleEntry{"padding", cfg.Padding},
		StyleEntry{"border", border},
		StyleEntry{"borderRadius", embedconfig.Radius(cfg.BorderRadiusName)},
		StyleEntry{"width", cfg.Width + string(cfg.WidthUnit)},
		StyleEntry{"height", cfg.Height + string(cfg.HeightUnit)},
	)
}

// PreviewStyles is the decoration of the live preview container.
func PreviewStyles(cfg embedconfig.IframeConfig) *Style {
	border := "none"
	if cfg.BorderStyle != embedconfig.BorderNone {
		border = fmt.Sprintf("%spx %s %s", cfg.BorderSize, cfg.BorderStyle, cfg.BorderColor)
	}

	return NewStyle(
		StyleEntry{"backgroundColor", cfg.BackgroundColor},
		StyleEntry{"padding", cfg.Padding},
		StyleEntry{"border", border},
		StyleEntry{"borderRadius", embedconfig.Radius(cfg.BorderRadiusName)},
	)
}

// GenerateHTML serializes cfg into a formatted <iframe> snippet.
func GenerateHTML(cfg embedconfig.IframeConfig) string {
	styleString := SnippetStyle(cfg).String()
	props := GenerateIframeProps(cfg).Props

	attrs := make([]string, 0, props.Len())
	for _, attr := range props.Entries() {
		switch v := attr.Value.(type) {
		case bool:
			if v {
				attrs = append(attrs, attr.Name)
			}
		case *Style:
			attrs = append(attrs, `style="`+html.EscapeString(styleString)+`"`)
		case string:
			name := strings.ToLower(attr.Name)
			if attr.Name == "className" {
				name = "class"
			}
			attrs = append(attrs, name+`="`+html.EscapeString(v)+`"`)
		}
	}

	return FormatCode("<iframe " + strings.Join(attrs, " ") + "></iframe>")
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	betweenTags   = regexp.MustCompile(`>\s+<`)
	breakAfter    = regexp.MustCompile(`([{};])`)
)

// FormatCode collapses whitespace, puts adjacent tags on separate lines and
// breaks after every brace and semicolon.
func FormatCode(code string) string {
	code = whitespaceRun.ReplaceAllString(code, " ")
	code = betweenTags.ReplaceAllString(code, ">\n<")
	code = breakAfter.ReplaceAllString(code, "${1}\n  ")
	return strings.TrimSpace(code)
}
