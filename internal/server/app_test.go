package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
	"alfredoptarigan/resume-matcher/internal/testutil"
	"alfredoptarigan/resume-matcher/mocks"
)

type geminiFunc func(ctx context.Context, prompt string) (string, error)

func (f geminiFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{UploadPath: t.TempDir(), MaxFileSize: 1 << 20},
		CORS:    config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}},
		Demo:    config.DemoConfig{UserEmail: "demo.user@example.com"},
	}
}

func newTestServer(t *testing.T, gemini services.GeminiService) *fiber.App {
	t.Helper()
	cfg := testConfig(t)
	log := zap.NewNop()

	parser := services.NewPDFParserService(services.NewStorageService(cfg.Storage.UploadPath), log)
	matcher := services.NewMatcherService(gemini, parser, services.MustNewPromptBuilder(), nil, nil, cfg.Demo.UserEmail, log)

	return NewApp(cfg, matcher, log)
}

func matchRequest(t *testing.T, jobDescription string, pdf []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("job_description", jobDescription))
	part, err := writer.CreateFormFile("resume", "resume.pdf")
	require.NoError(t, err)
	_, err = part.Write(pdf)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/match", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body
}

func TestMatchEndToEnd(t *testing.T) {
	gemini := new(mocks.MockGeminiService)
	gemini.On("GenerateText", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Alice Smith") && strings.Contains(prompt, "Go backend engineer")
	})).Return("Here is my assessment:\n```json\n{\"match_percentage\": 85, \"verdict\": \"Good\", \"analysis\": \"Strong Go experience.\"}\n```", nil).Once()

	app := newTestServer(t, gemini)

	resp, err := app.Test(matchRequest(t, "Go backend engineer", testutil.BuildPDF("Alice Smith\nGo developer, 6 years")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	body := readJSON(t, resp)
	assert.Equal(t, 85.0, body["match_percentage"])
	assert.Equal(t, "Good", body["verdict"])
	assert.Equal(t, "Strong Go experience.", body["analysis"])
	assert.Equal(t, "demo.user@example.com", body["user_email"])
	assert.NotContains(t, body, "drive_link")
	gemini.AssertExpectations(t)
}

func TestMatchMalformedPDF(t *testing.T) {
	valid := string(testutil.BuildPDF("Alice Smith"))
	bodies := map[string][]byte{
		"truncated":            []byte("%PDF-1.4\ntruncated"),
		"unterminated catalog": []byte(strings.Replace(valid, "/Pages 2 0 R", "/Pages (((((", 1)),
	}

	for name, pdf := range bodies {
		t.Run(name, func(t *testing.T) {
			gemini := new(mocks.MockGeminiService)
			app := newTestServer(t, gemini)

			resp, err := app.Test(matchRequest(t, "Go backend engineer", pdf), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := readJSON(t, resp)
			assert.Equal(t, string(services.KindMalformedDocument), body["kind"])
			assert.Contains(t, body["error"], "Failed to read the PDF")
			assert.Equal(t, body["error"], body["detail"])
			gemini.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
		})
	}
}

func TestMatchUnparsableReply(t *testing.T) {
	gemini := new(mocks.MockGeminiService)
	gemini.On("GenerateText", mock.Anything, mock.Anything).Return("Looks like a great fit!", nil).Once()
	app := newTestServer(t, gemini)

	resp, err := app.Test(matchRequest(t, "Go backend engineer", testutil.BuildPDF("Alice")), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := readJSON(t, resp)
	assert.Equal(t, string(services.KindUnparsableResponse), body["kind"])
	assert.Equal(t, "Looks like a great fit!", body["raw_response"])
}

func TestRefineEmptyJobDescription(t *testing.T) {
	gemini := new(mocks.MockGeminiService)
	app := newTestServer(t, gemini)

	req := httptest.NewRequest(http.MethodPost, "/refine-jd", strings.NewReader(`{"job_description": ""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := readJSON(t, resp)
	assert.Equal(t, string(services.KindInvalidInput), body["kind"])
	assert.EqualValues(t, http.StatusBadRequest, body["code"])
	gemini.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestCoverLetterEndToEnd(t *testing.T) {
	gemini := new(mocks.MockGeminiService)
	gemini.On("GenerateText", mock.Anything, mock.Anything).Return("Dear Hiring Manager,\n\nHello.", nil).Once()
	app := newTestServer(t, gemini)

	req := httptest.NewRequest(http.MethodPost, "/generate-cover-letter", strings.NewReader(`{"job_description":"Go dev"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dear Hiring Manager,\n\nHello.", readJSON(t, resp)["cover_letter"])
}

var candidateName = regexp.MustCompile(`Candidate-\d+`)

func TestConcurrentMatchesDoNotLeak(t *testing.T) {
	gemini := geminiFunc(func(_ context.Context, prompt string) (string, error) {
		name := candidateName.FindString(prompt)
		return fmt.Sprintf("```json\n{\"match_percentage\": 50, \"verdict\": %q, \"analysis\": \"about %s\"}\n```", name, name), nil
	})
	app := newTestServer(t, gemini)

	const workers = 12
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("Candidate-%d", i)

			resp, err := app.Test(matchRequest(t, "Role for "+name, testutil.BuildPDF(name)), -1)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var result models.MatchResult
			if assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result)) {
				assert.Equal(t, name, result.Verdict)
				assert.Equal(t, "about "+name, result.Analysis)
			}
		}(i)
	}
	wg.Wait()
}

func TestCORSAllowList(t *testing.T) {
	app := newTestServer(t, new(mocks.MockGeminiService))

	preflight := func(origin string) *http.Response {
		req := httptest.NewRequest(http.MethodOptions, "/match", nil)
		req.Header.Set(fiber.HeaderOrigin, origin)
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	allowed := preflight("http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", allowed.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", allowed.Header.Get(fiber.HeaderAccessControlAllowCredentials))

	denied := preflight("https://evil.example")
	assert.Empty(t, denied.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestUnknownRoute(t *testing.T) {
	app := newTestServer(t, new(mocks.MockGeminiService))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := readJSON(t, resp)
	assert.EqualValues(t, http.StatusNotFound, body["code"])
	assert.Equal(t, body["error"], body["detail"])
	assert.Equal(t, string(services.KindInvalidInput), body["kind"])
}
