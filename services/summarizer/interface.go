package summarizer

import (
	"context"

	"github.com/nijaru/lexai/models"
)

// Service is what the UI needs from a backend, whether it runs in-process
// or behind the HTTP API.
type Service interface {
	VideoInfo(ctx context.Context, url string) (*models.VideoInfo, error)
	Summarize(ctx context.Context, url string) (string, error)
	Answer(ctx context.Context, summary, question string) (string, error)
}

type VideoSource interface {
	VideoInfo(ctx context.Context, url string) (*models.VideoInfo, error)
	Transcript(ctx context.Context, url string) (string, error)
}

type LanguageModel interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	Answer(ctx context.Context, summary, question string) (string, error)
}
