package services

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

type TemplateName string

const (
	TemplateMatch         TemplateName = "match"
	TemplateRefineJD      TemplateName = "refine_jd"
	TemplateCoverLetter   TemplateName = "cover_letter"
	TemplateImproveResume TemplateName = "improve_resume"
)

// Placeholder names shared by the templates.
const (
	FieldResumeText     = "resume_text"
	FieldJobDescription = "job_description"
	FieldGoals          = "goals"
)

var (
	ErrMissingField    = errors.New("missing prompt field")
	ErrUnknownTemplate = errors.New("unknown prompt template")
)

//go:embed prompts/*.tmpl
var promptFiles embed.FS

// PromptRequest names a template and the values for its placeholders.
type PromptRequest struct {
	Template TemplateName
	Fields   map[string]string
}

// PromptBuilder renders the fixed prompt templates. Templates are parsed once
// and only read afterwards, so one builder is shared by all requests.
type PromptBuilder struct {
	templates map[TemplateName]*template.Template
}

func NewPromptBuilder() (*PromptBuilder, error) {
	names := []TemplateName{TemplateMatch, TemplateRefineJD, TemplateCoverLetter, TemplateImproveResume}
	pb := &PromptBuilder{templates: make(map[TemplateName]*template.Template, len(names))}

	for _, name := range names {
		raw, err := promptFiles.ReadFile("prompts/" + string(name) + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template %s: %w", name, err)
		}

		tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

// MustNewPromptBuilder is NewPromptBuilder for package-level setup in main and tests.
func MustNewPromptBuilder() *PromptBuilder {
	pb, err := NewPromptBuilder()
	if err != nil {
		panic(err)
	}
	return pb
}

// Build fills the named template. Any placeholder without a value fails with
// ErrMissingField before anything is sent upstream.
func (pb *PromptBuilder) Build(req PromptRequest) (string, error) {
	tmpl, ok := pb.templates[req.Template]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, req.Template)
	}

	fields := req.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, fields); err != nil {
		return "", fmt.Errorf("%w: template %s: %v", ErrMissingField, req.Template, err)
	}

	return strings.TrimSpace(sb.String()), nil
}

// BuildMatchPrompt creates the prompt for resume-to-job matching
func (pb *PromptBuilder) BuildMatchPrompt(resumeText, jobDescription string) (string, error) {
	return pb.Build(PromptRequest{
		Template: TemplateMatch,
		Fields: map[string]string{
			FieldResumeText:     resumeText,
			FieldJobDescription: jobDescription,
		},
	})
}

// BuildRefinePrompt creates the prompt for job description refinement
func (pb *PromptBuilder) BuildRefinePrompt(jobDescription, goals string) (string, error) {
	return pb.Build(PromptRequest{
		Template: TemplateRefineJD,
		Fields: map[string]string{
			FieldJobDescription: jobDescription,
			FieldGoals:          goals,
		},
	})
}

// BuildCoverLetterPrompt creates the prompt for cover letter generation
func (pb *PromptBuilder) BuildCoverLetterPrompt(jobDescription string) (string, error) {
	return pb.Build(PromptRequest{
		Template: TemplateCoverLetter,
		Fields: map[string]string{
			FieldJobDescription: jobDescription,
		},
	})
}

// BuildImprovePrompt creates the prompt for resume improvement advice
func (pb *PromptBuilder) BuildImprovePrompt(resumeText, jobDescription string) (string, error) {
	return pb.Build(PromptRequest{
		Template: TemplateImproveResume,
		Fields: map[string]string{
			FieldResumeText:     resumeText,
			FieldJobDescription: jobDescription,
		},
	})
}
