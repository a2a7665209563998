package models

import "strings"

type IframeErrorType string

const (
	IframeErrorXFrameOptions IframeErrorType = "X_FRAME_OPTIONS"
	IframeErrorCSPViolation  IframeErrorType = "CSP_VIOLATION"
	IframeErrorCSP           IframeErrorType = "CSP_ERROR"
	IframeErrorNetwork       IframeErrorType = "NETWORK_ERROR"
	IframeErrorLoad          IframeErrorType = "LOAD_ERROR"
	IframeErrorTimeout       IframeErrorType = "TIMEOUT"
	IframeErrorSecurity      IframeErrorType = "SECURITY_ERROR"
	IframeErrorPartialAccess IframeErrorType = "PARTIAL_ACCESS"
)

type IframeError struct {
	Type    IframeErrorType `json:"type"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
}

type IframeErrorMessage struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

var iframeErrorMessages = map[IframeErrorType]IframeErrorMessage{
	IframeErrorXFrameOptions: {
		Title:      "Embedding restricted",
		Message:    "The page sets X-Frame-Options and cannot be embedded.",
		Suggestion: "Ask the site owner for embedding permission or choose another page.",
	},
	IframeErrorCSPViolation: {
		Title:      "Content Security Policy violation",
		Message:    "The page's Content-Security-Policy does not allow this origin to frame it.",
		Suggestion: "Check the frame-ancestors directive of the target site.",
	},
	IframeErrorCSP: {
		Title:      "Content Security Policy restriction",
		Message:    "The page restricts embedding through frame-ancestors.",
		Suggestion: "Embed the page from an origin listed in its frame-ancestors directive.",
	},
	IframeErrorNetwork: {
		Title:      "Network error",
		Message:    "The page could not be reached.",
		Suggestion: "Check your connection and the URL, then try again.",
	},
	IframeErrorLoad: {
		Title:      "Failed to load",
		Message:    "The page failed to load.",
		Suggestion: "Make sure the URL is correct and the page is online.",
	},
	IframeErrorTimeout: {
		Title:      "Loading timed out",
		Message:    "The page took too long to respond.",
		Suggestion: "Increase the load timeout or try again later.",
	},
	IframeErrorSecurity: {
		Title:      "Blocked by security policy",
		Message:    "The browser blocked access to the embedded page.",
		Suggestion: "Relax the sandbox flags or use a page that allows cross-origin embedding.",
	},
	IframeErrorPartialAccess: {
		Title:      "Limited access",
		Message:    "The page loaded but its content is only partially accessible.",
		Suggestion: "Some interactive features may not work inside the frame.",
	},
}

// GetIframeErrorMessage maps an iframe failure to user-facing text. Unknown
// types fall back to a generic message, preferring the error's own message.
func GetIframeErrorMessage(e IframeError) IframeErrorMessage {
	if m, ok := iframeErrorMessages[e.Type]; ok {
		return m
	}

	msg := e.Message
	if msg == "" {
		msg = "An error occurred while loading the page."
	}
	return IframeErrorMessage{
		Title:      "Unknown error",
		Message:    msg,
		Suggestion: "Refresh the page and try again.",
	}
}

// ClassifyLoadError derives the failure type from a load error message.
func ClassifyLoadError(message string) IframeError {
	lower := strings.ToLower(message)

	t := IframeErrorLoad
	switch {
	case strings.Contains(lower, "x-frame-options"),
		strings.Contains(lower, "refused to display"),
		strings.Contains(lower, "cross-origin-opener-policy"):
		t = IframeErrorXFrameOptions
	case strings.Contains(lower, "frame-ancestors"):
		t = IframeErrorCSPViolation
	case strings.Contains(lower, "securityerror"):
		t = IframeErrorSecurity
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		t = IframeErrorTimeout
	case strings.Contains(lower, "network"):
		t = IframeErrorNetwork
	}

	return IframeError{
		Type:    t,
		Message: iframeErrorMessages[t].Message,
		Details: message,
	}
}
