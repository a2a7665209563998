package v1

import (
	"iframe-generator/pkg/device"
	"iframe-generator/pkg/embedconfig"
	"iframe-generator/pkg/history"
	"iframe-generator/pkg/markup"
	"iframe-generator/pkg/models"
	"iframe-generator/pkg/youtube"
)

// EmbedCheckResponse is the answer of /api/check-embed. Failures use the
// same shape with CanEmbed false.
type EmbedCheckResponse struct {
	CanEmbed       bool                   `json:"canEmbed"`
	Reason         string                 `json:"reason,omitempty"`
	Type           models.IframeErrorType `json:"type,omitempty"`
	AllowedOrigins []string               `json:"allowedOrigins,omitempty"`
}

type IframePropsRequest struct {
	Config        embedconfig.IframeConfig `json:"config"`
	DeviceType    string                   `json:"deviceType,omitempty"`
	ViewportWidth int                      `json:"viewportWidth,omitempty"`
	CustomStyles  *markup.Style            `json:"customStyles,omitempty"`
}

type IframePropsResponse struct {
	Props       *markup.Attributes `json:"props"`
	StyleString string             `json:"styleString"`
	Preview     *markup.Style      `json:"previewStyle"`
	Size        *device.SizeInfo   `json:"size,omitempty"`
}

type IframeConfigRequest struct {
	Config embedconfig.IframeConfig `json:"config"`
}

type IframeHTMLResponse struct {
	HTML   string                    `json:"html"`
	Config *embedconfig.IframeConfig `json:"config,omitempty"`
}

// YoutubeRequest carries either a full player config or just a video URL.
type YoutubeRequest struct {
	Config *youtube.Config `json:"config,omitempty"`
	URL    string          `json:"url,omitempty"`
}

type CodeResponse struct {
	Code string `json:"code"`
}

type PageTitleResponse struct {
	Title string `json:"title"`
}

type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}
