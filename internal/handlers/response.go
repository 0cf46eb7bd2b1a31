package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

const genericErrorMessage = "An internal server error occurred."

// RequestIDKey is where the request id middleware stores the id in Locals.
const RequestIDKey = "requestid"

func requestLogger(c *fiber.Ctx, log *zap.Logger) *zap.Logger {
	if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}

// StatusFor maps an error kind to its HTTP status: caller mistakes are 400,
// everything else 500.
func StatusFor(pe *services.PipelineError) int {
	if pe.ClientError() {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	pe := services.AsPipelineError(err)
	code := StatusFor(pe)

	resp := models.ErrorResponse{
		Error: pe.Message,
		Kind:  string(pe.Kind),
		Code:  code,
	}

	switch pe.Kind {
	case services.KindUnexpected:
		resp.Error = genericErrorMessage
		requestLogger(c, log).Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	case services.KindUnparsableResponse:
		resp.RawResponse = pe.Raw
	}
	resp.Detail = resp.Error

	return c.Status(code).JSON(resp)
}
