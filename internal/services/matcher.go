package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
)

const DefaultRefineGoals = "Make it clear, concise, and professional, highlighting the key responsibilities and the required qualifications."

// MatcherService runs the four capabilities over one shared pipeline:
// validate, extract the resume when needed, build the prompt, call the model
// once and normalize its reply. Every error it returns is a *PipelineError.
type MatcherService interface {
	Match(ctx context.Context, req models.MatchRequest) (*models.MatchResult, error)
	RefineJobDescription(ctx context.Context, req models.RefineRequest) (*models.RefinedJobDescription, error)
	GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (*models.CoverLetter, error)
	ImproveResume(ctx context.Context, req models.ImproveRequest) (*models.ResumeImprovement, error)
}

type matcherService struct {
	geminiService GeminiService
	pdfParser     PDFParserService
	promptBuilder *PromptBuilder
	drive         DriveService
	objects       ObjectStorageService
	demoEmail     string
	logger        *zap.Logger
}

// NewMatcherService wires the pipeline. drive and objects may be nil, which
// disables that resume source.
func NewMatcherService(
	geminiService GeminiService,
	pdfParser PDFParserService,
	promptBuilder *PromptBuilder,
	drive DriveService,
	objects ObjectStorageService,
	demoEmail string,
	logger *zap.Logger,
) MatcherService {
	return &matcherService{
		geminiService: geminiService,
		pdfParser:     pdfParser,
		promptBuilder: promptBuilder,
		drive:         drive,
		objects:       objects,
		demoEmail:     demoEmail,
		logger:        logger,
	}
}

// pipeline describes one capability. resume is nil for capabilities that
// take no document.
type pipeline[T any] struct {
	operation      string
	jobDescription string
	resume         *models.ResumeInput
	allowRemote    bool
	render         func(resumeText string) (string, error)
	normalize      func(reply string) (T, error)
}

func run[T any](ctx context.Context, m *matcherService, p pipeline[T]) (result T, doc *models.IngestedDocument, err error) {
	start := time.Now()
	log := m.logger.With(zap.String("operation", p.operation))

	defer func() {
		if r := recover(); r != nil {
			err = newError(KindUnexpected, fmt.Errorf("panic: %v", r), "an internal server error occurred")
		}
		if err == nil {
			log.Info("pipeline completed", zap.Duration("duration", time.Since(start)))
			return
		}

		pe := AsPipelineError(err)
		fields := []zap.Field{zap.String("kind", string(pe.Kind)), zap.Error(pe), zap.Duration("duration", time.Since(start))}
		if pe.ClientError() {
			log.Warn("pipeline rejected input", fields...)
		} else {
			log.Error("pipeline failed", fields...)
		}

		var zero T
		result, doc, err = zero, nil, pe
	}()

	// Validating
	if strings.TrimSpace(p.jobDescription) == "" {
		return result, nil, invalidInput("Job description cannot be empty.")
	}

	var source models.DocumentSource
	if p.resume != nil {
		if source, err = m.resumeSource(*p.resume, p.allowRemote); err != nil {
			return result, nil, err
		}
	}

	// Extracting
	var resumeText string
	if p.resume != nil {
		if doc, err = m.ingest(ctx, *p.resume, source); err != nil {
			return result, nil, err
		}
		resumeText = doc.Text
		log.Debug("resume extracted",
			zap.String("source", string(doc.Source)),
			zap.Int("text_length", len(resumeText)),
		)
	}

	prompt, err := p.render(resumeText)
	if err != nil {
		return result, nil, newError(KindUnexpected, err, "failed to build prompt")
	}

	// Invoking
	reply, err := m.geminiService.GenerateText(ctx, prompt)
	if err != nil {
		return result, nil, err
	}

	// Normalizing
	result, err = p.normalize(reply)
	if err != nil {
		return result, nil, err
	}

	return result, doc, nil
}

func (m *matcherService) Match(ctx context.Context, req models.MatchRequest) (*models.MatchResult, error) {
	result, doc, err := run(ctx, m, pipeline[*models.MatchResult]{
		operation:      "match",
		jobDescription: req.JobDescription,
		resume:         &req.Resume,
		allowRemote:    true,
		render: func(resumeText string) (string, error) {
			return m.promptBuilder.BuildMatchPrompt(resumeText, req.JobDescription)
		},
		normalize: NormalizeMatch,
	})
	if err != nil {
		return nil, err
	}

	result.UserEmail = m.demoEmail
	if doc.Source != models.SourceUpload {
		link := doc.Reference
		result.DriveLink = &link
	}

	return result, nil
}

func (m *matcherService) RefineJobDescription(ctx context.Context, req models.RefineRequest) (*models.RefinedJobDescription, error) {
	goals := strings.TrimSpace(req.Goals)
	if goals == "" {
		goals = DefaultRefineGoals
	}

	result, _, err := run(ctx, m, pipeline[*models.RefinedJobDescription]{
		operation:      "refine_jd",
		jobDescription: req.JobDescription,
		render: func(string) (string, error) {
			return m.promptBuilder.BuildRefinePrompt(req.JobDescription, goals)
		},
		normalize: func(reply string) (*models.RefinedJobDescription, error) {
			text, err := NormalizeText(reply)
			if err != nil {
				return nil, err
			}
			return &models.RefinedJobDescription{RefinedJD: text}, nil
		},
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (m *matcherService) GenerateCoverLetter(ctx context.Context, req models.CoverLetterRequest) (*models.CoverLetter, error) {
	result, _, err := run(ctx, m, pipeline[*models.CoverLetter]{
		operation:      "cover_letter",
		jobDescription: req.JobDescription,
		render: func(string) (string, error) {
			return m.promptBuilder.BuildCoverLetterPrompt(req.JobDescription)
		},
		normalize: func(reply string) (*models.CoverLetter, error) {
			text, err := NormalizeText(reply)
			if err != nil {
				return nil, err
			}
			return &models.CoverLetter{CoverLetter: text}, nil
		},
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (m *matcherService) ImproveResume(ctx context.Context, req models.ImproveRequest) (*models.ResumeImprovement, error) {
	result, _, err := run(ctx, m, pipeline[*models.ResumeImprovement]{
		operation:      "improve_resume",
		jobDescription: req.JobDescription,
		resume:         &req.Resume,
		render: func(resumeText string) (string, error) {
			return m.promptBuilder.BuildImprovePrompt(resumeText, req.JobDescription)
		},
		normalize: NormalizeImprovement,
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// resumeSource checks that exactly one usable resume source was supplied.
func (m *matcherService) resumeSource(in models.ResumeInput, allowRemote bool) (models.DocumentSource, error) {
	var sources []models.DocumentSource
	if in.HasUpload() {
		sources = append(sources, models.SourceUpload)
	}
	if allowRemote && in.HasDrive() {
		sources = append(sources, models.SourceDrive)
	}
	if allowRemote && in.HasObjectKey() {
		sources = append(sources, models.SourceObjectStorage)
	}

	switch len(sources) {
	case 0:
		if allowRemote {
			return "", invalidInput("Please upload a resume file or provide a Google Drive file ID and token.")
		}
		return "", invalidInput("No file uploaded.")
	case 1:
	default:
		return "", invalidInput("Provide exactly one resume source, not both an upload and a remote file.")
	}

	switch source := sources[0]; source {
	case models.SourceUpload:
		if len(in.Data) == 0 {
			return "", invalidInput("Uploaded resume is empty.")
		}
		return source, nil
	case models.SourceDrive:
		if m.drive == nil {
			return "", invalidInput("Google Drive import is not enabled.")
		}
		if strings.TrimSpace(in.DriveFileID) == "" || strings.TrimSpace(in.AccessToken) == "" {
			return "", invalidInput("Both drive_file_id and token are required for a Google Drive file.")
		}
		return source, nil
	default:
		if m.objects == nil {
			return "", invalidInput("Object storage import is not enabled.")
		}
		return source, nil
	}
}

func (m *matcherService) ingest(ctx context.Context, in models.ResumeInput, source models.DocumentSource) (*models.IngestedDocument, error) {
	var (
		data      []byte
		reference string
		err       error
	)

	switch source {
	case models.SourceDrive:
		fileID := strings.TrimSpace(in.DriveFileID)
		if data, err = m.drive.Download(ctx, fileID, strings.TrimSpace(in.AccessToken)); err != nil {
			return nil, err
		}
		reference = m.drive.Link(fileID)
	case models.SourceObjectStorage:
		if data, err = m.objects.Download(ctx, in.ObjectKey); err != nil {
			return nil, err
		}
		reference = m.objects.Link(in.ObjectKey)
	default:
		data = in.Data
		reference = in.Filename
	}

	text, err := m.pdfParser.ExtractText(data)
	if err != nil {
		return nil, err
	}

	return &models.IngestedDocument{
		Text:      text,
		Source:    source,
		Reference: reference,
	}, nil
}
