package youtube

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"
	"golang.org/x/net/html"
)

// GenerateEmbedURL returns the player URL for cfg, or an empty string when
// no video id is set. Looping always pairs loop=1 with playlist=<id>.
func GenerateEmbedURL(cfg Config) string {
	if cfg.VideoID == "" {
		return ""
	}

	u, err := whatwg.Parse(cfg.host() + "/embed/" + cfg.VideoID)
	if err != nil {
		return ""
	}

	params := u.SearchParams()
	params.Set("rel", "0")
	params.Set("enablejsapi", "1")
	params.Set("controls", flag(cfg.Controls))

	if cfg.Loop {
		params.Set("loop", "1")
		params.Set("playlist", cfg.VideoID)
	}
	if cfg.Autoplay {
		params.Set("autoplay", "1")
	}
	if cfg.ShowCaptions {
		params.Set("cc_load_policy", "1")
	}
	if cfg.Quality != QualityAuto && cfg.Quality != "" {
		params.Set("quality", cfg.Quality)
	}
	if cfg.StartTime != "" {
		params.Set("start", strconv.Itoa(ConvertTimeToSeconds(cfg.StartTime)))
	}
	if cfg.EndTime != "" {
		params.Set("end", strconv.Itoa(ConvertTimeToSeconds(cfg.EndTime)))
	}
	if cfg.CCLangPref != "" {
		params.Set("cc_lang_pref", cfg.CCLangPref)
	}
	if cfg.HL != "" {
		params.Set("hl", cfg.HL)
	}
	if !cfg.ShowAnnotations {
		params.Set("iv_load_policy", "3")
	}
	if cfg.AdNetwork {
		params.Set("preconnect_ads", "1")
	}
	if !cfg.FS {
		params.Set("fs", "0")
	}

	return u.Href(false)
}

// liteParams is the params attribute of <lite-youtube>. Empty values are dropped
// and cfg.Params is appended verbatim.
func liteParams(cfg Config) string {
	rel := "0"
	if cfg.Rel == RelPreload {
		rel = "1"
	}
	ivLoadPolicy := "3"
	if cfg.ShowAnnotations {
		ivLoadPolicy = "1"
	}

	pairs := [][2]string{
		{"controls", flag(cfg.Controls)},
		{"playsinline", "1"},
		{"cc_load_policy", flag(cfg.ShowCaptions)},
		{"cc_lang_pref", cfg.CCLangPref},
		{"hl", cfg.HL},
		{"color", cfg.Color},
		{"autoplay", flag(cfg.Autoplay)},
		{"disablekb", flag(!cfg.Controls)},
		{"rel", rel},
		{"iv_load_policy", ivLoadPolicy},
		{"start", cfg.StartTime},
		{"end", cfg.EndTime},
		{"loop", flag(cfg.Loop)},
		{"mute", flag(cfg.Mute)},
	}

	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		out = append(out, p[0]+"="+p[1])
	}

	// user supplied extras go last so they override the generated values
	if extra := strings.Trim(strings.TrimSpace(cfg.Params), "?&"); extra != "" {
		out = append(out, extra)
	}

	return strings.Join(out, "&")
}

// GenerateLiteYoutubeHTML renders the <lite-youtube> element.
func GenerateLiteYoutubeHTML(cfg Config) string {
	if cfg.VideoID == "" {
		return ""
	}

	title := ""
	if cfg.Title != "" {
		title = `title="` + html.EscapeString(cfg.Title) + `"`
	}
	poster := ""
	if cfg.Poster != "" {
		poster = `poster="` + html.EscapeString(cfg.Poster) + `"`
	}

	return fmt.Sprintf(` <lite-youtube
    videoid="%s"
    %s
    cookie=%t
    adNetwork=%t
    webp=%t
    aspectHeight=%d
    aspectWidth=%d
    %s
    params="%s"
  ></lite-youtube>`,
		html.EscapeString(cfg.VideoID), title, cfg.Cookie, cfg.AdNetwork, cfg.WebP,
		cfg.AspectHeight, cfg.AspectWidth, poster, html.EscapeString(liteParams(cfg)))
}

func liteDependencies() string {
	return `<link rel="stylesheet" href="` + liteYoutubeCSSURL + `" />
<script src="` + liteYoutubeJSURL + `"></script>
`
}

// GenerateWebComponentCode prefixes the lite element with its CDN stylesheet and script.
func GenerateWebComponentCode(cfg Config) string {
	return "\n" + liteDependencies() + GenerateLiteYoutubeHTML(cfg)
}

// GenerateLiteIFrameCode wraps a standalone lite-youtube page in an iframe
// whose src is a percent-encoded data URL.
func GenerateLiteIFrameCode(cfg Config) string {
	if cfg.VideoID == "" {
		return ""
	}

	doc := `
<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  ` + strings.TrimSuffix(liteDependencies(), "\n") + `
</head>
<body>
  ` + GenerateLiteYoutubeHTML(cfg) + `
</body>
</html>`

	return `<iframe
  src="data:text/html;charset=UTF-8,` + encodeURIComponent(doc) + `"
  frameborder="0"
  allowfullscreen
  width="640"
  height="360"
  style="max-width: 100%;"
></iframe>`
}

// playerParams is the query used by the standard and data-URL variants.
func playerParams(cfg Config) string {
	var params []string
	if cfg.Autoplay {
		params = append(params, "autoplay=1")
	}
	if cfg.Mute {
		params = append(params, "mute=1")
	}
	if !cfg.Controls {
		params = append(params, "controls=0")
	}
	if cfg.Loop {
		params = append(params, "loop=1&playlist="+url.QueryEscape(cfg.VideoID))
	}
	if cfg.ModestBranding {
		params = append(params, "modestbranding=1")
	}
	if cfg.ShowCaptions {
		params = append(params, "cc_load_policy=1")
	}
	if cfg.Quality != QualityAuto && cfg.Quality != "" {
		params = append(params, "vq="+url.QueryEscape(cfg.Quality))
	}
	if start := ConvertTimeToSeconds(cfg.StartTime); start > 0 {
		params = append(params, "start="+strconv.Itoa(start))
	}
	if end := ConvertTimeToSeconds(cfg.EndTime); end > 0 {
		params = append(params, "end="+strconv.Itoa(end))
	}

	return strings.Join(params, "&")
}

// GenerateStandardIframeCode renders a plain player iframe.
func GenerateStandardIframeCode(cfg Config) string {
	if cfg.VideoID == "" {
		return ""
	}

	src := cfg.host() + "/embed/" + url.PathEscape(cfg.VideoID)
	if params := playerParams(cfg); params != "" {
		src += "?" + params
	}

	return fmt.Sprintf(`<iframe
  width="%s"
  height="%s"
  src="%s"
  title="%s"
  frameborder="0"
  allow="%s"
  allowfullscreen
></iframe>`,
		html.EscapeString(cfg.Width), html.EscapeString(cfg.Height), html.EscapeString(src),
		html.EscapeString(cfg.titleOrDefault()), playerAllow)
}

// GenerateDataURLIframeCode embeds a self-contained lite-youtube page as a
// base64 data URL.
func GenerateDataURLIframeCode(cfg Config) string {
	if cfg.VideoID == "" {
		return ""
	}

	title := html.EscapeString(cfg.titleOrDefault())

	var attrs []string
	attrs = append(attrs, `videoid="`+html.EscapeString(cfg.VideoID)+`"`)
	if cfg.Title != "" {
		attrs = append(attrs, `playlabel="`+html.EscapeString(cfg.Title)+`"`)
	}
	if params := playerParams(cfg); params != "" {
		attrs = append(attrs, `params="`+html.EscapeString(params)+`"`)
	}
	if !cfg.Cookie {
		attrs = append(attrs, `nocookie="true"`)
	}
	attrs = append(attrs, `poster="`+html.EscapeString(cfg.Poster)+`"`)
	if cfg.AdNetwork {
		attrs = append(attrs, `adnetwork="true"`)
	}

	doc := `
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>` + title + `</title>
  <script type="module" src="` + liteModuleJSURL + `"></script>
  <style>
    body { margin: 0; }
    lite-youtube {
      width: 100%;
      height: 100vh;
      background-color: #000;
    }
  </style>
</head>
<body>
  <lite-youtube
    ` + strings.Join(attrs, "\n    ") + `
  ></lite-youtube>
</body>
</html>`

	return fmt.Sprintf(`<iframe
  width="%s"
  height="%s"
  src="data:text/html;base64,%s"
  title="%s"
  frameborder="0"
  allowfullscreen
></iframe>`,
		html.EscapeString(cfg.Width), html.EscapeString(cfg.Height),
		base64.StdEncoding.EncodeToString([]byte(doc)), title)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes everything outside A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(s))
}
