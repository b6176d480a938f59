package apperror

import (
	"katutubo-llm/config"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/llm"
	"katutubo-llm/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// WriteError logs a structured warning and returns the standard {detail} payload
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, code status.ErrorCode, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"url":           c.OriginalURL(),
		"ip":            c.IP(),
		"body":          string(c.Body()),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(llm.ErrorResponse{Detail: message})
}

// BadRequest is the single client-visible error class of the API.
func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return WriteError(module, c, fiber.StatusBadRequest, code, message)
}

// FromError writes err as a 400, keeping its code in the log only.
func FromError(module config.Module, c fiber.Ctx, err error) error {
	code, ok := status.CodeOf(err)
	if !ok {
		code = status.ErrorCodeInternal
	}
	return BadRequest(module, c, code, err.Error())
}

// Unavailable writes a 503 for dependency probes.
func Unavailable(module config.Module, c fiber.Ctx, err error) error {
	code, ok := status.CodeOf(err)
	if !ok {
		code = status.ErrorCodeInternal
	}
	return WriteError(module, c, fiber.StatusServiceUnavailable, code, err.Error())
}
