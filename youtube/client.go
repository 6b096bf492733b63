package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/models"
	"github.com/nijaru/lexai/validation"
	"github.com/sirupsen/logrus"
)

const watchURL = "https://www.youtube.com/watch?v="

type Config struct {
	OEmbedURL    string
	ThumbnailURL string
	Languages    []string
	HTTPTimeout  time.Duration
}

// CaptionSource returns the caption text of a video in the first available
// language from languages.
type CaptionSource interface {
	Captions(ctx context.Context, videoID string, languages []string) (string, error)
}

// Client fetches video metadata through oEmbed and transcripts through a CaptionSource.
type Client struct {
	httpClient *http.Client
	captions   CaptionSource
	config     Config
	logger     logrus.FieldLogger
}

type Option func(*Client)

func WithCaptionSource(source CaptionSource) Option {
	return func(c *Client) {
		c.captions = source
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		captions:   NewTranscriptAPI(),
		config:     cfg,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type oembedResponse struct {
	Title string `json:"title"`
}

// VideoInfo returns the id, title and thumbnail of the video behind rawURL.
func (c *Client) VideoInfo(ctx context.Context, rawURL string) (*models.VideoInfo, error) {
	const op = "youtube.VideoInfo"

	videoID, err := validation.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	logger := c.logger.WithField("video_id", videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oembedURL(videoID), nil)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build oEmbed request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Warn("oEmbed request failed")
		return nil, errors.Upstream(op, err, "Could not fetch video information")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"duration": time.Since(start),
		}).Info("oEmbed returned non-200 status")
		return nil, errors.InvalidInput(op, fmt.Errorf("oembed status %d", resp.StatusCode), "Could not fetch video information")
	}

	var data oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Upstream(op, err, "Could not fetch video information")
	}

	logger.WithFields(logrus.Fields{
		"title":    data.Title,
		"duration": time.Since(start),
	}).Debug("Fetched video information")

	return &models.VideoInfo{
		ID:        videoID,
		Title:     data.Title,
		Thumbnail: c.thumbnailURL(videoID),
	}, nil
}

// Transcript returns the caption text of the video behind rawURL as a single
// space-separated string.
func (c *Client) Transcript(ctx context.Context, rawURL string) (string, error) {
	const op = "youtube.Transcript"

	videoID, err := validation.ExtractVideoID(rawURL)
	if err != nil {
		return "", err
	}
	logger := c.logger.WithField("video_id", videoID)

	start := time.Now()
	text, err := c.captions.Captions(ctx, videoID, c.config.Languages)
	if err != nil {
		logger.WithError(err).Warn("Transcript fetch failed")
		return "", errors.InvalidInput(op, err, fmt.Sprintf("Could not fetch transcript: %v", err))
	}

	text = JoinLines(text)
	if text == "" {
		return "", errors.InvalidInput(op, nil, "Could not fetch transcript: transcript is empty")
	}

	logger.WithFields(logrus.Fields{
		"length":   len(text),
		"duration": time.Since(start),
	}).Debug("Fetched transcript")

	return text, nil
}

func (c *Client) oembedURL(videoID string) string {
	q := url.Values{}
	q.Set("url", watchURL+videoID)
	q.Set("format", "json")
	return c.config.OEmbedURL + "?" + q.Encode()
}

func (c *Client) thumbnailURL(videoID string) string {
	return fmt.Sprintf("%s/%s/maxresdefault.jpg", strings.TrimRight(c.config.ThumbnailURL, "/"), videoID)
}

// JoinLines collapses caption lines and inner whitespace into single spaces.
func JoinLines(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
