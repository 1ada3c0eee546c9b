package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/models"
)

// ErrorHandler renders every error returned by a handler as models.ErrorResponse.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := fiberErr.Code
		kind := ""
		message := fiberErr.Message
		if code == fiber.StatusRequestEntityTooLarge {
			code = fiber.StatusBadRequest
			kind = apperror.CodeValidation
			message = "file too large"
		}
		return c.Status(code).JSON(models.ErrorResponse{
			Error: message,
			Code:  code,
			Kind:  kind,
		})
	}

	status := apperror.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Msg("request failed")
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: apperror.MessageOf(err),
		Code:  status,
		Kind:  apperror.CodeOf(err),
	})
}
