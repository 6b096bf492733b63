package youtube

import (
	"context"
	"errors"

	"github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript"
	"github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript_formatters"
	"github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript_models"
)

var errNoTranscript = errors.New("no transcript available")

// TranscriptAPI reads caption tracks straight from YouTube.
type TranscriptAPI struct{}

func NewTranscriptAPI() *TranscriptAPI {
	return &TranscriptAPI{}
}

type captionResult struct {
	text string
	err  error
}

// Captions runs the blocking library call on its own goroutine so ctx can
// abandon it.
func (t *TranscriptAPI) Captions(ctx context.Context, videoID string, languages []string) (string, error) {
	done := make(chan captionResult, 1)

	go func() {
		client := yt_transcript.NewClient()
		transcripts, err := client.GetTranscripts(videoID, languages)
		if err != nil {
			done <- captionResult{err: err}
			return
		}
		if len(transcripts) == 0 {
			done <- captionResult{err: errNoTranscript}
			return
		}

		formatter := yt_transcript_formatters.NewTextFormatter(
			yt_transcript_formatters.WithTimestamps(false),
		)
		text, err := formatter.Format([]yt_transcript_models.Transcript{transcripts[0]})
		done <- captionResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}
