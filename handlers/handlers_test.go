package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/logger"
	"github.com/nijaru/lexai/models"
)

type fakeService struct {
	err        error
	lastURL    string
	lastAnswer models.QuestionRequest
}

func (f *fakeService) VideoInfo(_ context.Context, url string) (*models.VideoInfo, error) {
	f.lastURL = url
	if f.err != nil {
		return nil, f.err
	}
	return &models.VideoInfo{
		ID:        "dQw4w9WgXcQ",
		Title:     "Never Gonna Give You Up",
		Thumbnail: "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
	}, nil
}

func (f *fakeService) Summarize(_ context.Context, url string) (string, error) {
	f.lastURL = url
	if f.err != nil {
		return "", f.err
	}
	return "A song about commitment.", nil
}

func (f *fakeService) Answer(_ context.Context, summary, question string) (string, error) {
	f.lastAnswer = models.QuestionRequest{Summary: summary, Question: question}
	if f.err != nil {
		return "", f.err
	}
	return "Never.", nil
}

func newTestApp(svc *fakeService) *fiber.App {
	log := logger.Discard()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	h := NewAPIHandler(svc, log)
	app.Post("/api/video-info", h.VideoInfo)
	app.Post("/api/summarize", h.Summarize)
	app.Post("/api/answer", h.Answer)
	app.Get("/health", HealthCheck("1.2.3", time.Now()))
	return app
}

func doJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Failed to unmarshal %q: %v", raw, err)
	}
	return resp.StatusCode, out
}

func TestVideoInfoHandler(t *testing.T) {
	svc := &fakeService{}
	code, body := doJSON(t, newTestApp(svc), "/api/video-info", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	if code != fiber.StatusOK {
		t.Fatalf("Expected status code %d, got %d", fiber.StatusOK, code)
	}
	if svc.lastURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("unexpected url passed to service: %q", svc.lastURL)
	}
	if body["id"] != "dQw4w9WgXcQ" || body["title"] != "Never Gonna Give You Up" {
		t.Errorf("unexpected body %v", body)
	}
	if !strings.HasSuffix(body["thumbnail"].(string), "/dQw4w9WgXcQ/maxresdefault.jpg") {
		t.Errorf("unexpected thumbnail %v", body["thumbnail"])
	}
}

func TestSummarizeHandler(t *testing.T) {
	code, body := doJSON(t, newTestApp(&fakeService{}), "/api/summarize", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	if code != fiber.StatusOK {
		t.Fatalf("Expected status code %d, got %d", fiber.StatusOK, code)
	}
	if body["summary"] != "A song about commitment." {
		t.Errorf("unexpected summary %v", body["summary"])
	}
}

func TestAnswerHandler(t *testing.T) {
	svc := &fakeService{}
	code, body := doJSON(t, newTestApp(svc), "/api/answer", `{"summary":"A song.","question":"When will he give you up?"}`)

	if code != fiber.StatusOK {
		t.Fatalf("Expected status code %d, got %d", fiber.StatusOK, code)
	}
	if body["answer"] != "Never." {
		t.Errorf("unexpected answer %v", body["answer"])
	}
	if svc.lastAnswer.Question != "When will he give you up?" || svc.lastAnswer.Summary != "A song." {
		t.Errorf("unexpected request passed to service: %+v", svc.lastAnswer)
	}
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "invalid url",
			path:     "/api/video-info",
			body:     `{"url":"not a video"}`,
			err:      errors.InvalidInput("op", nil, "Invalid YouTube URL"),
			wantCode: fiber.StatusBadRequest,
			wantMsg:  "Invalid YouTube URL",
		},
		{
			name:     "malformed json",
			path:     "/api/summarize",
			body:     `{"url":`,
			wantCode: fiber.StatusBadRequest,
			wantMsg:  "Invalid JSON format",
		},
		{
			name:     "upstream failure",
			path:     "/api/summarize",
			body:     `{"url":"https://youtu.be/dQw4w9WgXcQ"}`,
			err:      errors.Upstream("op", io.ErrUnexpectedEOF, "Language model request failed"),
			wantCode: fiber.StatusBadGateway,
			wantMsg:  "Language model request failed",
		},
		{
			name:     "unknown error hides details",
			path:     "/api/answer",
			body:     `{"summary":"s","question":"q"}`,
			err:      io.ErrClosedPipe,
			wantCode: fiber.StatusInternalServerError,
			wantMsg:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := doJSON(t, newTestApp(&fakeService{err: tt.err}), tt.path, tt.body)

			if code != tt.wantCode {
				t.Errorf("Expected status code %d, got %d", tt.wantCode, code)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("Expected error %q, got %v", tt.wantMsg, body["error"])
			}
			if body["success"] != false {
				t.Errorf("Expected success=false, got %v", body["success"])
			}
		})
	}
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	code, body := doJSON(t, newTestApp(&fakeService{}), "/api/nope", `{}`)

	if code != fiber.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", fiber.StatusNotFound, code)
	}
	if body["error"] == "" {
		t.Error("Expected an error message")
	}
}

func TestHealthHandler(t *testing.T) {
	app := newTestApp(&fakeService{})

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status code %d, got %d", fiber.StatusOK, resp.StatusCode)
	}

	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type %s, got %s", "application/json", resp.Header.Get("Content-Type"))
	}

	var response struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Version   string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("Expected status \"ok\", got %q", response.Status)
	}
	if response.Version != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %q", response.Version)
	}
	if _, err := time.Parse(time.RFC3339, response.Timestamp); err != nil {
		t.Errorf("Invalid timestamp format: %v", err)
	}
}
