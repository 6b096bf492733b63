package summarizer

import (
	"context"
	"time"

	"github.com/nijaru/lexai/models"
	"github.com/nijaru/lexai/validation"
	"github.com/sirupsen/logrus"
)

type service struct {
	videos VideoSource
	model  LanguageModel
	logger logrus.FieldLogger
}

type Option func(*service)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// NewService creates the in-process summarizer backed by a video source and a language model.
func NewService(videos VideoSource, model LanguageModel, opts ...Option) Service {
	s := &service{
		videos: videos,
		model:  model,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) VideoInfo(ctx context.Context, url string) (*models.VideoInfo, error) {
	logger := s.logger.WithField("url", url)

	info, err := s.videos.VideoInfo(ctx, url)
	if err != nil {
		logger.WithError(err).Warn("Failed to fetch video info")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"video_id": info.ID,
		"title":    info.Title,
	}).Debug("Fetched video info")
	return info, nil
}

func (s *service) Summarize(ctx context.Context, url string) (string, error) {
	logger := s.logger.WithField("url", url)
	start := time.Now()

	transcript, err := s.videos.Transcript(ctx, url)
	if err != nil {
		logger.WithError(err).Warn("Failed to fetch transcript")
		return "", err
	}

	logger = logger.WithField("transcript_length", len(transcript))
	logger.Debug("Fetched transcript")

	summary, err := s.model.Summarize(ctx, transcript)
	if err != nil {
		logger.WithError(err).Error("Failed to summarize transcript")
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"summary_length": len(summary),
		"duration":       time.Since(start),
	}).Info("Summary created")
	return summary, nil
}

func (s *service) Answer(ctx context.Context, summary, question string) (string, error) {
	if err := validation.ValidateSummary(summary); err != nil {
		return "", err
	}
	if err := validation.ValidateQuestion(question); err != nil {
		return "", err
	}

	answer, err := s.model.Answer(ctx, summary, question)
	if err != nil {
		s.logger.WithError(err).WithField("question", question).Error("Failed to answer question")
		return "", err
	}
	return answer, nil
}
