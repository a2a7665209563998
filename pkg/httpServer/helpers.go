package httpServer

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"iframe-generator/pkg/constants"
	"iframe-generator/pkg/models"
	v1 "iframe-generator/pkg/models/api/v1"
)

func okHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Code).JSON(fiber.Map{
			"error": appErr.Message,
		})
	}

	errorResponse := errorResponse{
		Error: err.Error(),
	}

	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse)
}

// embedErrorHandler answers check-embed failures in the same shape as a verdict.
func embedErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	reason := "internal server error"

	var appErr *models.AppError
	var fe *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code, reason = appErr.Code, appErr.Message
	case errors.As(err, &fe):
		code, reason = fe.Code, fe.Message
	}

	return c.Status(code).JSON(v1.EmbedCheckResponse{
		CanEmbed: false,
		Reason:   reason,
	})
}

// queryURL reads a url query parameter, rejecting oversized values.
func queryURL(c *fiber.Ctx, key string) (string, error) {
	u := strings.TrimSpace(c.Query(key))
	if len(u) > constants.MaxURLLength {
		return "", models.NewAppError(models.URITooLongErrorCode, "")
	}

	return u, nil
}

// skipLimiter exempts liveness probes from the request limit.
func skipLimiter(c *fiber.Ctx) bool {
	return c.Path() == "/api/v1/health"
}

func isJSONObject(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "{")
}
