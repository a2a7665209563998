// Package device resolves the simulated device frames used by the live preview.
package device

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"iframe-generator/pkg/markup"
)

type Type string

const (
	Desktop Type = markup.DeviceDesktop
	Tablet  Type = markup.DeviceTablet
	Mobile  Type = markup.DeviceMobile
)

const smallViewport = 768

type Preset struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	Label  string  `json:"label"`
}

var presets = map[Type]Preset{
	Desktop: {Width: 1280, Height: 720, Scale: 1, Label: "Desktop"},
	Tablet:  {Width: 768, Height: 1024, Scale: 1, Label: "Tablet"},
	Mobile:  {Width: 375, Height: 667, Scale: 1, Label: "Mobile"},
}

// Types lists devices in display order.
func Types() []Type {
	return []Type{Desktop, Tablet, Mobile}
}

func Lookup(t Type) (Preset, bool) {
	p, ok := presets[t]
	return p, ok
}

func Parse(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return Desktop, nil
	}
	if _, ok := presets[t]; !ok {
		return "", fmt.Errorf("unknown device type %q", s)
	}

	return t, nil
}

// MarkupPresets adapts the table for markup.WithDevice.
func MarkupPresets() map[string]markup.DevicePreset {
	out := make(map[string]markup.DevicePreset, len(presets))
	for t, p := range presets {
		out[string(t)] = markup.DevicePreset{
			Width:  strconv.Itoa(p.Width) + "px",
			Height: strconv.Itoa(p.Height) + "px",
		}
	}
	return out
}

// ShouldShowOutline reports whether the configured size fits the device in
// at least one dimension, in which case the device frame is drawn.
func ShouldShowOutline(width, height int, t Type) bool {
	p, ok := presets[t]
	if !ok {
		return false
	}

	return width <= p.Width || height <= p.Height
}

// PreviewScale shrinks wide content on small viewports. Larger viewports, and
// a viewportWidth of 0 meaning none was reported, use the preset scale.
func PreviewScale(viewportWidth, width int, t Type) float64 {
	p, ok := presets[t]
	if !ok {
		return 1
	}

	if viewportWidth > 0 && viewportWidth < smallViewport {
		if width <= 0 {
			return 1
		}
		return math.Min(float64(viewportWidth)/float64(width), 1)
	}

	return p.Scale
}

// LeadingInt mimics parseInt on size strings like "800px": leading digits, 0 when absent.
func LeadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

type SizeInfo struct {
	Device      string  `json:"device"`
	Content     string  `json:"content"`
	Scaled      string  `json:"scaled,omitempty"`
	ShowOutline bool    `json:"showOutline"`
	Scale       float64 `json:"scale"`
}

// Describe produces the preview captions: the device frame, the configured
// content size and, when scaled, the size actually displayed. Heights are always px.
func Describe(width int, widthUnit string, height, viewportWidth int, t Type) SizeInfo {
	p, ok := presets[t]
	if !ok {
		return SizeInfo{}
	}

	outline := ShouldShowOutline(width, height, t)
	actualWidth := width
	if outline {
		actualWidth = min(width, p.Width)
	}

	scale := PreviewScale(viewportWidth, width, t)
	info := SizeInfo{
		Device:      fmt.Sprintf("%s (%d×%dpx)", p.Label, p.Width, p.Height),
		Content:     fmt.Sprintf("Content: %d%s×%dpx", width, widthUnit, height),
		ShowOutline: outline,
		Scale:       scale,
	}

	if scale != 1 {
		scaledWidth := fmt.Sprintf("%dpx", int(math.Round(float64(actualWidth)*scale)))
		if widthUnit == "%" {
			scaledWidth = fmt.Sprintf("%d%%", int(math.Round(float64(width)*scale)))
		}
		info.Scaled = fmt.Sprintf("Display: %s×%dpx", scaledWidth, int(math.Round(float64(height)*scale)))
	}

	return info
}
