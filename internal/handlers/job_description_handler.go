package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

// JobDescriptionHandler serves the endpoints that only need job description
// text. Bodies may be JSON, urlencoded or multipart.
type JobDescriptionHandler struct {
	matcher services.MatcherService
	logger  *zap.Logger
}

func NewJobDescriptionHandler(matcher services.MatcherService, logger *zap.Logger) *JobDescriptionHandler {
	return &JobDescriptionHandler{
		matcher: matcher,
		logger:  logger,
	}
}

func (h *JobDescriptionHandler) HandleRefine(c *fiber.Ctx) error {
	var req models.RefineRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, h.logger, badRequest("Invalid request body."))
	}

	result, err := h.matcher.RefineJobDescription(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(result)
}

func (h *JobDescriptionHandler) HandleCoverLetter(c *fiber.Ctx) error {
	var req models.CoverLetterRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, h.logger, badRequest("Invalid request body."))
	}

	result, err := h.matcher.GenerateCoverLetter(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(result)
}
