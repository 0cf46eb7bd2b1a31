package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatchPrompt(t *testing.T) {
	pb := MustNewPromptBuilder()

	prompt, err := pb.BuildMatchPrompt("Go, Kubernetes, 7 years", "Senior Backend Engineer")

	require.NoError(t, err)
	assert.Contains(t, prompt, "Go, Kubernetes, 7 years")
	assert.Contains(t, prompt, "Senior Backend Engineer")
	for _, key := range []string{"match_percentage", "verdict", "analysis", "JSON"} {
		assert.Contains(t, prompt, key)
	}
}

func TestBuildImprovePromptRequestsJSONKeys(t *testing.T) {
	pb := MustNewPromptBuilder()

	prompt, err := pb.BuildImprovePrompt("resume", "jd")

	require.NoError(t, err)
	for _, key := range []string{"strengths", "gaps", "suggestions", "JSON"} {
		assert.Contains(t, prompt, key)
	}
}

func TestFreeTextPromptsAskForPlainText(t *testing.T) {
	pb := MustNewPromptBuilder()

	refine, err := pb.BuildRefinePrompt("Backend role", "make it inclusive")
	require.NoError(t, err)
	assert.Contains(t, refine, "make it inclusive")
	assert.Contains(t, refine, "plain text")

	letter, err := pb.BuildCoverLetterPrompt("Backend role")
	require.NoError(t, err)
	assert.Contains(t, letter, "Backend role")
	assert.Contains(t, letter, "plain text")
}

func TestBuildMissingField(t *testing.T) {
	pb := MustNewPromptBuilder()

	tests := []struct {
		name   string
		req    PromptRequest
		target error
	}{
		{
			name:   "match without resume",
			req:    PromptRequest{Template: TemplateMatch, Fields: map[string]string{FieldJobDescription: "jd"}},
			target: ErrMissingField,
		},
		{
			name:   "refine without goals",
			req:    PromptRequest{Template: TemplateRefineJD, Fields: map[string]string{FieldJobDescription: "jd"}},
			target: ErrMissingField,
		},
		{
			name:   "nil fields",
			req:    PromptRequest{Template: TemplateCoverLetter},
			target: ErrMissingField,
		},
		{
			name:   "unknown template",
			req:    PromptRequest{Template: "summary", Fields: map[string]string{}},
			target: ErrUnknownTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := pb.Build(tt.req)
			assert.ErrorIs(t, err, tt.target)
			assert.Empty(t, prompt)
		})
	}
}

func TestBuildIsDeterministicAndDoesNotReinterpretValues(t *testing.T) {
	pb := MustNewPromptBuilder()
	jd := "Needs {{.resume_text}} and {curly} braces"

	first, err := pb.BuildCoverLetterPrompt(jd)
	require.NoError(t, err)
	second, err := pb.BuildCoverLetterPrompt(jd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, jd)
}
