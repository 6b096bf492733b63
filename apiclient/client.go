package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/middleware"
	"github.com/nijaru/lexai/models"
	"github.com/nijaru/lexai/services/summarizer"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client talks to a running LexAI API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

var _ summarizer.Service = (*Client)(nil)

type Option func(*Client)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) VideoInfo(ctx context.Context, url string) (*models.VideoInfo, error) {
	var info models.VideoInfo
	if err := c.post(ctx, "/api/video-info", models.VideoURLRequest{URL: url}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Summarize(ctx context.Context, url string) (string, error) {
	var resp models.SummaryResponse
	if err := c.post(ctx, "/api/summarize", models.VideoURLRequest{URL: url}, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

func (c *Client) Answer(ctx context.Context, summary, question string) (string, error) {
	var resp models.AnswerResponse
	req := models.QuestionRequest{Summary: summary, Question: question}
	if err := c.post(ctx, "/api/answer", req, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	op := "apiclient.post " + path

	body, err := json.Marshal(in)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Internal(op, err, "Failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := middleware.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Upstream(op, err, "API request failed: "+err.Error())
	}
	defer resp.Body.Close()

	logger := c.logger.WithFields(logrus.Fields{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp)
		logger.WithField("error", msg).Warn("API returned an error")
		return errors.E(op, fmt.Errorf("status %d", resp.StatusCode), msg, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Upstream(op, pkgerrors.Wrap(err, "decode response"), "Invalid response from API")
	}
	logger.Debug("API request completed")
	return nil
}

func readErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var payload models.ErrorResponse
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
