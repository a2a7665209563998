package httpServer

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const previewCSP = "default-src 'none'; style-src 'unsafe-inline'; img-src data: https:; frame-src http: https:"

// requirePermission checks the bearer token's md5 against the configured hashes.
func (h *handler) requirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Get(fiber.HeaderAuthorization)
		if accessToken == "" {
			return errorHandler(c, fiber.NewError(fiber.StatusUnauthorized, "unauthorized"))
		}

		if strings.HasPrefix(strings.ToLower(accessToken), "bearer ") {
			accessToken = accessToken[7:]
		}

		hash := md5.Sum([]byte(accessToken))
		tokenHash := fmt.Sprintf("%x", hash[:])

		tokenPermissions, exists := h.accessTokens[tokenHash]
		if !exists {
			return errorHandler(c, fiber.NewError(fiber.StatusForbidden, "forbidden"))
		}

		hasPermission := false
		switch permission {
		case "metrics":
			hasPermission = tokenPermissions.Metrics
		}

		if !hasPermission {
			return errorHandler(c, fiber.NewError(fiber.StatusForbidden, "forbidden"))
		}

		return c.Next()
	}
}

func (h *handler) requireMetrics() fiber.Handler {
	return h.requirePermission("metrics")
}

func (h *handler) loggerMiddleware(c *fiber.Ctx) error {
	headers := c.GetReqHeaders()
	for _, name := range []string{fiber.HeaderAuthorization, fiber.HeaderCookie} {
		if _, ok := headers[name]; ok {
			headers[name] = []string{"REDACTED"}
		}
	}

	res := c.Next()

	h.logger.Debug(
		"request",
		"status_code", c.Response().StatusCode(),
		"method", c.Method(),
		"url", c.OriginalURL(),
		"headers", headers,
		"body_length", len(c.Body()),
	)

	return res
}

// securityHeadersMiddleware locks down the preview page. Only the embedded
// frame may load remote content.
func (h *handler) securityHeadersMiddleware(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentSecurityPolicy, previewCSP)
	c.Set(fiber.HeaderXFrameOptions, "SAMEORIGIN")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderReferrerPolicy, "no-referrer")

	return c.Next()
}
