package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"homestock/internal/domain"
	applog "homestock/internal/log"
)

var statusByCode = map[domain.Code]int{
	domain.CodeNotFound:          fiber.StatusNotFound,
	domain.CodeInvalid:           fiber.StatusBadRequest,
	domain.CodeInsufficientStock: fiber.StatusBadRequest,
	domain.CodeConflict:          fiber.StatusConflict,
	domain.CodeForbidden:         fiber.StatusForbidden,
	domain.CodeUnauthorized:      fiber.StatusUnauthorized,
	domain.CodeExpired:           fiber.StatusGone,
}

const genericError = "Something went wrong. Please try again."

// fail writes the JSON reply for a domain error. Anything else goes to the
// app ErrorHandler as a 500.
func fail(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return err
	}
	status, ok := statusByCode[de.Code]
	if !ok {
		status = fiber.StatusBadRequest
	}
	c.Status(status)
	body := fiber.Map{"error": de.Message, "code": de.Code}
	switch de.Code {
	case domain.CodeInsufficientStock:
		body["available"] = de.Available
		body["requested"] = de.Requested
	case domain.CodeInvalid:
		applog.Security(c, "validation.fail", map[string]any{"reason": de.Message})
	case domain.CodeForbidden, domain.CodeUnauthorized:
		applog.Security(c, "access.denied", map[string]any{"reason": de.Message})
	}
	return c.JSON(body)
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	c.Status(fiber.StatusBadRequest)
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.JSON(fiber.Map{"error": msg, "code": domain.CodeInvalid})
}

// ErrorHandler is the app-wide fallback. Internal details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message, "code": codeForStatus(fe.Code)})
	}
	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, "server.error", err, nil)
	return c.JSON(fiber.Map{"error": genericError, "code": "internal"})
}

func codeForStatus(status int) string {
	for code, s := range statusByCode {
		if s == status && code != domain.CodeInsufficientStock {
			return string(code)
		}
	}
	switch status {
	case fiber.StatusRequestEntityTooLarge:
		return "too_large"
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	}
	return "error"
}

// NotFound answers unknown routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "route not found", "code": domain.CodeNotFound})
}
