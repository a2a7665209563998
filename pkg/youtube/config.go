// Package youtube builds YouTube player embeds: plain player URLs and iframes,
// lite-youtube custom elements and data-URL wrappers around them.
package youtube

import (
	"encoding/json"
	"slices"
)

const (
	liteYoutubeJSURL  = "https://cdnjs.cloudflare.com/ajax/libs/lite-youtube-embed/0.3.3/lite-yt-embed.min.js"
	liteYoutubeCSSURL = "https://cdnjs.cloudflare.com/ajax/libs/lite-youtube-embed/0.3.3/lite-yt-embed.min.css"
	liteModuleJSURL   = "https://cdn.jsdelivr.net/npm/@justinribeiro/lite-youtube@1.5.0/lite-youtube.js"

	hostCookie   = "https://www.youtube.com"
	hostNoCookie = "https://www.youtube-nocookie.com"

	defaultTitle = "YouTube video player"
	playerAllow  = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"
)

const (
	QualityAuto = "auto"
	PosterHQ    = "hqdefault"
	ColorRed    = "red"
	ColorWhite  = "white"
	RelPreload  = "preload"
)

var Qualities = []string{QualityAuto, "hd2160", "hd1440", "hd1080", "hd720", "large", "medium", "small"}

var Posters = []string{"default", "mqdefault", PosterHQ, "sddefault", "maxresdefault"}

// Config describes a single YouTube embed. Width, Height and ModestBranding
// only affect the standard and data-URL iframe variants. Params is appended to
// the lite element's params attribute. Playlist, PlaylistCoverID and Announce
// are editor state: they are stored and echoed back but no generator reads them.
type Config struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`

	Autoplay        bool   `json:"autoplay"`
	Mute            bool   `json:"mute"`
	Controls        bool   `json:"controls"`
	Loop            bool   `json:"loop"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Quality         string `json:"quality"`
	ShowAnnotations bool   `json:"showAnnotations"`
	FS              bool   `json:"fs"`

	ShowCaptions bool   `json:"showCaptions"`
	CCLangPref   string `json:"ccLangPref"`
	HL           string `json:"hl"`

	Poster string `json:"poster"`
	WebP   bool   `json:"webp"`
	Color  string `json:"color"`

	Playlist        bool   `json:"playlist"`
	PlaylistCoverID string `json:"playlistCoverId"`

	Cookie    bool `json:"cookie"`
	AdNetwork bool `json:"adNetwork"`

	Announce     string `json:"announce"`
	AspectHeight int    `json:"aspectHeight"`
	AspectWidth  int    `json:"aspectWidth"`

	Params string `json:"params"`
	Rel    string `json:"rel"`

	Width          string `json:"width"`
	Height         string `json:"height"`
	ModestBranding bool   `json:"modestBranding"`
}

func DefaultConfig() Config {
	return Config{
		Title:           defaultTitle,
		Controls:        true,
		Quality:         QualityAuto,
		ShowAnnotations: true,
		FS:              true,
		Poster:          PosterHQ,
		WebP:            true,
		Color:           ColorRed,
		Cookie:          true,
		AspectHeight:    9,
		AspectWidth:     16,
		Width:           "100%",
		Height:          "400px",
		ModestBranding:  true,
	}
}

// UnmarshalJSON decodes onto DefaultConfig, so fields absent from data keep
// their defaults instead of turning false or empty.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config

	out := plain(DefaultConfig())
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*c = Config(out)

	return nil
}

// Sanitize resets enumerated fields holding unknown values to their defaults.
func (c Config) Sanitize() Config {
	def := DefaultConfig()

	if !slices.Contains(Qualities, c.Quality) {
		c.Quality = def.Quality
	}
	if !slices.Contains(Posters, c.Poster) {
		c.Poster = def.Poster
	}
	if c.Color != ColorRed && c.Color != ColorWhite {
		c.Color = def.Color
	}
	if c.AspectWidth <= 0 || c.AspectHeight <= 0 {
		c.AspectWidth, c.AspectHeight = def.AspectWidth, def.AspectHeight
	}
	if c.Width == "" {
		c.Width = def.Width
	}
	if c.Height == "" {
		c.Height = def.Height
	}

	return c
}

func (c Config) host() string {
	if c.Cookie {
		return hostCookie
	}
	return hostNoCookie
}

func (c Config) titleOrDefault() string {
	if c.Title == "" {
		return defaultTitle
	}
	return c.Title
}
