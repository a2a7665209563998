// Package embedconfig holds the iframe embed configuration record, its defaults,
// lookup tables, sanitization and schema migration.
package embedconfig

type Unit string

const (
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
)

type BorderStyle string

const (
	BorderNone   BorderStyle = "none"
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderDouble BorderStyle = "double"
)

type Loading string

const (
	LoadingLazy  Loading = "lazy"
	LoadingEager Loading = "eager"
)

type Importance string

const (
	ImportanceAuto Importance = "auto"
	ImportanceHigh Importance = "high"
	ImportanceLow  Importance = "low"
)

type XFrameOptions string

const (
	XFrameDeny       XFrameOptions = "DENY"
	XFrameSameOrigin XFrameOptions = "SAMEORIGIN"
	XFrameAllowFrom  XFrameOptions = "ALLOW-FROM"
)

type SecurityMode string

const (
	SecurityStrict   SecurityMode = "strict"
	SecurityModerate SecurityMode = "moderate"
	SecurityRelaxed  SecurityMode = "relaxed"
)

type LoadingAnimation string

const (
	AnimationSpinner  LoadingAnimation = "spinner"
	AnimationSkeleton LoadingAnimation = "skeleton"
	AnimationBlur     LoadingAnimation = "blur"
	AnimationNone     LoadingAnimation = "none"
)

type CSPDirectives struct {
	DefaultSrc []string `json:"defaultSrc" yaml:"defaultSrc"`
	ScriptSrc  []string `json:"scriptSrc" yaml:"scriptSrc"`
	StyleSrc   []string `json:"styleSrc" yaml:"styleSrc"`
	ImgSrc     []string `json:"imgSrc" yaml:"imgSrc"`
	ConnectSrc []string `json:"connectSrc" yaml:"connectSrc"`
	FrameSrc   []string `json:"frameSrc" yaml:"frameSrc"`
}

type CSP struct {
	Enabled    bool          `json:"enabled" yaml:"enabled"`
	Directives CSPDirectives `json:"directives" yaml:"directives"`
}

type Performance struct {
	Preconnect         bool             `json:"preconnect" yaml:"preconnect"`
	Preload            bool             `json:"preload" yaml:"preload"`
	Priority           Importance       `json:"priority" yaml:"priority"`
	Timeout            int              `json:"timeout" yaml:"timeout"`
	RetryCount         int              `json:"retryCount" yaml:"retryCount"`
	RetryDelay         int              `json:"retryDelay" yaml:"retryDelay"`
	ErrorFallback      string           `json:"errorFallback" yaml:"errorFallback"`
	LoadingIndicator   bool             `json:"loadingIndicator" yaml:"loadingIndicator"`
	LoadingAnimation   LoadingAnimation `json:"loadingAnimation" yaml:"loadingAnimation"`
	MonitorPerformance bool             `json:"monitorPerformance" yaml:"monitorPerformance"`
}

// IframeConfig is the extended embed configuration. Records written by older
// clients without the security and performance sections are upgraded by Migrate.
type IframeConfig struct {
	SchemaVersion int `json:"schemaVersion" yaml:"schemaVersion"`

	URL              string      `json:"url" yaml:"url"`
	Width            string      `json:"width" yaml:"width"`
	WidthUnit        Unit        `json:"widthUnit" yaml:"widthUnit"`
	Height           string      `json:"height" yaml:"height"`
	HeightUnit       Unit        `json:"heightUnit" yaml:"heightUnit"`
	Border           bool        `json:"border" yaml:"border"`
	BorderSize       string      `json:"borderSize" yaml:"borderSize"`
	BorderStyle      BorderStyle `json:"borderStyle" yaml:"borderStyle"`
	BorderColor      string      `json:"borderColor" yaml:"borderColor"`
	BorderRadiusName string      `json:"borderRadiusName" yaml:"borderRadiusName"`
	Scrolling        bool        `json:"scrolling" yaml:"scrolling"`
	AllowFullscreen  bool        `json:"allowFullscreen" yaml:"allowFullscreen"`
	BackgroundColor  string      `json:"backgroundColor" yaml:"backgroundColor"`
	Padding          string      `json:"padding" yaml:"padding"`
	CustomClass      string      `json:"customClass" yaml:"customClass"`
	Sandbox          []string    `json:"sandbox" yaml:"sandbox"`
	ReferrerPolicy   string      `json:"referrerPolicy,omitempty" yaml:"referrerPolicy"`
	Title            string      `json:"title" yaml:"title"`
	AriaLabel        string      `json:"ariaLabel" yaml:"ariaLabel"`
	Name             string      `json:"name" yaml:"name"`
	Description      string      `json:"description" yaml:"description"`
	Loading          Loading     `json:"loading" yaml:"loading"`
	Importance       Importance  `json:"importance" yaml:"importance"`
	Allow            []string    `json:"allow" yaml:"allow"`

	LazyLoad        bool              `json:"lazyLoad" yaml:"lazyLoad"`
	AutoHeight      bool              `json:"autoHeight" yaml:"autoHeight"`
	Preload         string            `json:"preload" yaml:"preload"`
	Timeout         int               `json:"timeout" yaml:"timeout"`
	FallbackContent string            `json:"fallbackContent" yaml:"fallbackContent"`
	CSP             CSP               `json:"csp" yaml:"csp"`
	XFrameOptions   XFrameOptions     `json:"xFrameOptions" yaml:"xFrameOptions"`
	SecurityHeaders map[string]string `json:"securityHeaders" yaml:"securityHeaders"`
	DomainWhitelist []string          `json:"domainWhitelist" yaml:"domainWhitelist"`
	SecurityMode    SecurityMode      `json:"securityMode" yaml:"securityMode"`
	Performance     Performance       `json:"performance" yaml:"performance"`
}

// Clone returns a deep copy so callers can mutate slices and maps freely.
func (c IframeConfig) Clone() IframeConfig {
	out := c
	out.Sandbox = cloneStrings(c.Sandbox)
	out.Allow = cloneStrings(c.Allow)
	out.DomainWhitelist = cloneStrings(c.DomainWhitelist)
	out.CSP.Directives = CSPDirectives{
		DefaultSrc: cloneStrings(c.CSP.Directives.DefaultSrc),
		ScriptSrc:  cloneStrings(c.CSP.Directives.ScriptSrc),
		StyleSrc:   cloneStrings(c.CSP.Directives.StyleSrc),
		ImgSrc:     cloneStrings(c.CSP.Directives.ImgSrc),
		ConnectSrc: cloneStrings(c.CSP.Directives.ConnectSrc),
		FrameSrc:   cloneStrings(c.CSP.Directives.FrameSrc),
	}
	if c.SecurityHeaders != nil {
		out.SecurityHeaders = make(map[string]string, len(c.SecurityHeaders))
		for k, v := range c.SecurityHeaders {
			out.SecurityHeaders[k] = v
		}
	}

	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}

	out := make([]string, len(in))
	copy(out, in)
	return out
}
