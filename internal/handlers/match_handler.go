package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

// MatchHandler serves the endpoints that take a resume document.
type MatchHandler struct {
	matcher     services.MatcherService
	maxFileSize int64
	logger      *zap.Logger
}

func NewMatchHandler(matcher services.MatcherService, maxFileSize int64, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		matcher:     matcher,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// HandleMatch scores a resume against a job description.
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	form, err := readResumeForm(c, h.maxFileSize)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	requestLogger(c, h.logger).Info("match requested",
		zap.String("filename", form.Resume.Filename),
		zap.Bool("drive", form.Resume.HasDrive()),
		zap.Bool("object_storage", form.Resume.HasObjectKey()),
	)

	result, err := h.matcher.Match(c.UserContext(), models.MatchRequest{
		JobDescription: form.JobDescription,
		Resume:         form.Resume,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(result)
}

func (h *MatchHandler) HandleImproveResume(c *fiber.Ctx) error {
	form, err := readResumeForm(c, h.maxFileSize)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	result, err := h.matcher.ImproveResume(c.UserContext(), models.ImproveRequest{
		JobDescription: form.JobDescription,
		Resume:         form.Resume,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(result)
}
