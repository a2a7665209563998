package embedconfig

import "slices"

const CurrentSchemaVersion = 2

// RadiusPresets maps borderRadiusName to a CSS length.
var RadiusPresets = map[string]string{
	"none": "0px",
	"sm":   "2px",
	"md":   "4px",
	"lg":   "8px",
	"xl":   "12px",
	"xl2":  "16px",
	"xl3":  "24px",
	"full": "9999px",
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var SandboxOptions = []Option{
	{"allow-forms", "Allow form submission"},
	{"allow-scripts", "Allow JavaScript execution"},
	{"allow-same-origin", "Allow same origin access"},
	{"allow-popups", "Allow window.open()"},
	{"allow-modals", "Allow alert/confirm/prompt"},
	{"allow-downloads", "Allow file downloads"},
	{"allow-popups-to-escape-sandbox", "Allow popups without sandbox restrictions"},
	{"allow-top-navigation", "Allow changing parent URL"},
	{"allow-top-navigation-by-user-activation", "Allow changing parent URL by user click"},
	{"allow-top-navigation-to-custom-protocols", "Allow custom protocol links"},
	{"allow-presentation", "Allow presentation mode"},
	{"allow-storage-access-by-user-activation", "Allow storage access by user click"},
	{"allow-orientation-lock", "Allow screen orientation lock"},
	{"allow-pointer-lock", "Allow mouse pointer lock"},
}

var ReferrerPolicies = []string{
	"no-referrer",
	"no-referrer-when-downgrade",
	"origin",
	"origin-when-cross-origin",
	"same-origin",
	"strict-origin",
	"strict-origin-when-cross-origin",
	"unsafe-url",
}

var BorderStyles = []BorderStyle{BorderNone, BorderSolid, BorderDashed, BorderDotted, BorderDouble}

var preloadValues = []string{"auto", "metadata", "none"}

func IsSandboxToken(token string) bool {
	return slices.ContainsFunc(SandboxOptions, func(o Option) bool {
		return o.Value == token
	})
}

func IsReferrerPolicy(policy string) bool {
	return slices.Contains(ReferrerPolicies, policy)
}

// Radius resolves a preset name, falling back to the "none" length.
func Radius(name string) string {
	if r, ok := RadiusPresets[name]; ok {
		return r
	}

	return RadiusPresets["none"]
}

func validUnit(u Unit) bool {
	return u == UnitPx || u == UnitPercent
}

func validBorderStyle(s BorderStyle) bool {
	return slices.Contains(BorderStyles, s)
}

func validLoading(l Loading) bool {
	return l == LoadingLazy || l == LoadingEager
}

func validImportance(i Importance) bool {
	return i == ImportanceAuto || i == ImportanceHigh || i == ImportanceLow
}

func validXFrameOptions(x XFrameOptions) bool {
	return x == XFrameDeny || x == XFrameSameOrigin || x == XFrameAllowFrom
}

func validSecurityMode(m SecurityMode) bool {
	return m == SecurityStrict || m == SecurityModerate || m == SecurityRelaxed
}

func validAnimation(a LoadingAnimation) bool {
	return a == AnimationSpinner || a == AnimationSkeleton || a == AnimationBlur || a == AnimationNone
}
