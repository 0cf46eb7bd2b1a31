package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/handlers"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

// multipart overhead allowed on top of the resume itself
const bodyLimitSlack = 1 << 20

// NewApp builds the Fiber app with middleware and every route registered.
func NewApp(cfg *config.Config, matcher services.MatcherService, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + bodyLimitSlack,
		ErrorHandler: newErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: handlers.RequestIDKey,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.AllowOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	matchHandler := handlers.NewMatchHandler(matcher, cfg.Storage.MaxFileSize, log)
	jdHandler := handlers.NewJobDescriptionHandler(matcher, log)

	app.Get("/", handlers.HandleRoot)
	app.Post("/match", matchHandler.HandleMatch)
	app.Post("/improve-resume", matchHandler.HandleImproveResume)
	app.Post("/refine-jd", jdHandler.HandleRefine)
	app.Post("/generate-cover-letter", jdHandler.HandleCoverLetter)

	return app
}

// newErrorHandler renders framework errors (404, 405, 413, recovered panics)
// in the same shape as pipeline errors.
func newErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		resp := models.ErrorResponse{
			Error: err.Error(),
			Kind:  string(services.KindInvalidInput),
			Code:  code,
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			resp.Error = "An internal server error occurred."
			resp.Kind = string(services.KindUnexpected)
		}
		resp.Detail = resp.Error

		return c.Status(code).JSON(resp)
	}
}
