package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

const resumeField = "resume"

var allowedResumeTypes = map[string]bool{
	"application/pdf":          true,
	"application/octet-stream": true,
}

// resumeForm is the multipart body shared by /match and /improve-resume.
type resumeForm struct {
	JobDescription string
	Resume         models.ResumeInput
}

// readResumeForm parses the multipart body. A missing resume part is not an
// error here; the matcher decides which sources are acceptable.
func readResumeForm(c *fiber.Ctx, maxFileSize int64) (*resumeForm, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, badRequest("failed to parse multipart form")
	}

	out := &resumeForm{
		JobDescription: firstValue(form, "job_description"),
		Resume: models.ResumeInput{
			DriveFileID: strings.TrimSpace(firstValue(form, "drive_file_id")),
			AccessToken: strings.TrimSpace(firstValue(form, "token")),
			ObjectKey:   strings.TrimSpace(firstValue(form, "resume_key")),
		},
	}

	files := form.File[resumeField]
	if len(files) == 0 {
		return out, nil
	}

	resume := files[0]
	if resume.Filename == "" {
		return nil, badRequest("No file uploaded.")
	}

	contentType := resume.Header.Get("Content-Type")
	if !allowedResumeTypes[contentType] {
		return nil, badRequest("Please upload a PDF file.")
	}

	if resume.Size > maxFileSize {
		return nil, badRequest(fmt.Sprintf("File too large. Max size: %d bytes", maxFileSize))
	}

	data, err := readFile(resume)
	if err != nil {
		return nil, err
	}

	out.Resume.Data = data
	out.Resume.Filename = resume.Filename
	out.Resume.ContentType = contentType

	return out, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return data, nil
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func badRequest(message string) *services.PipelineError {
	return &services.PipelineError{Kind: services.KindInvalidInput, Message: message}
}
