package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/logger"
)

const logPreviewLength = 200

// GeminiService sends one rendered prompt to the model and returns its raw
// reply. It never retries; resubmitting is left to the caller.
type GeminiService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
	logger      *zap.Logger
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, log *zap.Logger) (GeminiService, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		logger:      log,
	}, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	g.logger.Debug("gemini generate content request",
		zap.String("model", g.modelName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, logPreviewLength)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		g.logger.Error("gemini api error", zap.Error(err))
		return "", newError(KindUpstreamUnavailable, err, "the language model could not be reached")
	}

	text, err := replyText(resp)
	if err != nil {
		g.logger.Warn("gemini declined to answer", zap.Error(err))
		return "", err
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, logPreviewLength)),
	)

	return text, nil
}

// replyText returns the text of the first candidate, or an UpstreamRejected
// error when the model blocked the prompt or produced nothing.
func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", newError(KindUpstreamRejected, nil, "the language model returned no response")
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", newError(KindUpstreamRejected, nil, "the language model blocked the prompt: %s", fb.BlockReason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", newError(KindUpstreamRejected, nil, "the language model returned no candidates")
	}

	candidate := resp.Candidates[0]

	var builder strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
			return "", newError(KindUpstreamRejected, nil, "the language model stopped without an answer: %s", candidate.FinishReason)
		}
		return "", newError(KindUpstreamRejected, nil, "no text content in response")
	}

	return text, nil
}
