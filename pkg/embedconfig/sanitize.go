package embedconfig

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"iframe-generator/pkg/urlnorm"
)

var (
	nonDigits   = regexp.MustCompile(`[^0-9]`)
	digitsOnly  = regexp.MustCompile(`^[0-9]+$`)
	cssSizeExpr = regexp.MustCompile(`^\d+(%|px|rem|em|vh|vw)$`)
)

// IsValidSize reports whether size is a number followed by a supported CSS unit.
func IsValidSize(size string) bool {
	return cssSizeExpr.MatchString(size)
}

// Digits strips everything but ASCII digits.
func Digits(value string) string {
	return nonDigits.ReplaceAllString(value, "")
}

// Sanitize clamps every field to its allowed domain: numeric strings are
// reduced to digits, enums fall back to their defaults, sandbox tokens are
// filtered to the known set and deduplicated in caller order.
func (c IframeConfig) Sanitize() IframeConfig {
	def := Default()
	out := c.Clone()

	out.SchemaVersion = CurrentSchemaVersion
	out.URL = strings.TrimSpace(out.URL)
	out.Width = digitsOr(out.Width, def.Width)
	out.Height = digitsOr(out.Height, def.Height)
	out.BorderSize = digitsOr(out.BorderSize, def.BorderSize)

	if !validUnit(out.WidthUnit) {
		out.WidthUnit = def.WidthUnit
	}
	if !validUnit(out.HeightUnit) {
		out.HeightUnit = def.HeightUnit
	}
	if !validBorderStyle(out.BorderStyle) {
		out.BorderStyle = def.BorderStyle
	}
	if _, ok := RadiusPresets[out.BorderRadiusName]; !ok {
		out.BorderRadiusName = def.BorderRadiusName
	}
	if !validLoading(out.Loading) {
		out.Loading = def.Loading
	}
	if !validImportance(out.Importance) {
		out.Importance = def.Importance
	}
	if out.ReferrerPolicy != "" && !IsReferrerPolicy(out.ReferrerPolicy) {
		out.ReferrerPolicy = ""
	}

	out.Sandbox = uniqueFiltered(out.Sandbox, IsSandboxToken)
	out.Allow = uniqueFiltered(out.Allow, func(string) bool { return true })
	out.DomainWhitelist = uniqueFiltered(out.DomainWhitelist, func(string) bool { return true })

	if !slices.Contains(preloadValues, out.Preload) {
		out.Preload = def.Preload
	}
	if out.Timeout <= 0 {
		out.Timeout = def.Timeout
	}
	if !validXFrameOptions(out.XFrameOptions) {
		out.XFrameOptions = def.XFrameOptions
	}
	if !validSecurityMode(out.SecurityMode) {
		out.SecurityMode = def.SecurityMode
	}
	if out.SecurityHeaders == nil {
		out.SecurityHeaders = map[string]string{}
	}

	p := &out.Performance
	if !validImportance(p.Priority) {
		p.Priority = def.Performance.Priority
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Performance.Timeout
	}
	if p.RetryCount < 0 {
		p.RetryCount = 0
	}
	if p.RetryDelay < 0 {
		p.RetryDelay = 0
	}
	if !validAnimation(p.LoadingAnimation) {
		p.LoadingAnimation = def.Performance.LoadingAnimation
	}

	return out
}

func digitsOr(value, fallback string) string {
	if d := Digits(value); d != "" {
		return d
	}

	return fallback
}

func uniqueFiltered(in []string, keep func(string) bool) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || !keep(v) || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}

	return out
}

// Validate reports every field that Sanitize would have to rewrite.
func (c IframeConfig) Validate() error {
	var errs []error

	if c.URL != "" && !urlnorm.IsValidURL(c.URL) {
		errs = append(errs, fmt.Errorf("url: %q is not a valid website address", c.URL))
	}
	if !digitsOnly.MatchString(c.Width) {
		errs = append(errs, fmt.Errorf("width: %q must contain digits only", c.Width))
	}
	if !digitsOnly.MatchString(c.Height) {
		errs = append(errs, fmt.Errorf("height: %q must contain digits only", c.Height))
	}
	if c.BorderSize != "" && !digitsOnly.MatchString(c.BorderSize) {
		errs = append(errs, fmt.Errorf("borderSize: %q must contain digits only", c.BorderSize))
	}
	if !validUnit(c.WidthUnit) {
		errs = append(errs, fmt.Errorf("widthUnit: unsupported unit %q", c.WidthUnit))
	}
	if !validUnit(c.HeightUnit) {
		errs = append(errs, fmt.Errorf("heightUnit: unsupported unit %q", c.HeightUnit))
	}
	if !validBorderStyle(c.BorderStyle) {
		errs = append(errs, fmt.Errorf("borderStyle: unsupported style %q", c.BorderStyle))
	}
	if _, ok := RadiusPresets[c.BorderRadiusName]; !ok {
		errs = append(errs, fmt.Errorf("borderRadiusName: unknown preset %q", c.BorderRadiusName))
	}
	if c.ReferrerPolicy != "" && !IsReferrerPolicy(c.ReferrerPolicy) {
		errs = append(errs, fmt.Errorf("referrerPolicy: unknown policy %q", c.ReferrerPolicy))
	}
	if !validLoading(c.Loading) {
		errs = append(errs, fmt.Errorf("loading: unsupported value %q", c.Loading))
	}
	if !validImportance(c.Importance) {
		errs = append(errs, fmt.Errorf("importance: unsupported value %q", c.Importance))
	}

	seen := make(map[string]struct{}, len(c.Sandbox))
	for _, token := range c.Sandbox {
		if !IsSandboxToken(token) {
			errs = append(errs, fmt.Errorf("sandbox: unknown token %q", token))
			continue
		}
		if _, dup := seen[token]; dup {
			errs = append(errs, fmt.Errorf("sandbox: duplicate token %q", token))
		}
		seen[token] = struct{}{}
	}

	return errors.Join(errs...)
}
