package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaptions struct {
	text      string
	err       error
	gotID     string
	gotLangs  []string
	callCount int
}

func (f *fakeCaptions) Captions(_ context.Context, videoID string, languages []string) (string, error) {
	f.callCount++
	f.gotID = videoID
	f.gotLangs = languages
	return f.text, f.err
}

func newTestClient(t *testing.T, oembed http.HandlerFunc, captions CaptionSource) *Client {
	t.Helper()

	srv := httptest.NewServer(oembed)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		OEmbedURL:    srv.URL + "/oembed",
		ThumbnailURL: "https://img.youtube.com/vi/",
		Languages:    []string{"en", "de"},
		HTTPTimeout:  5 * time.Second,
	}, WithCaptionSource(captions), WithLogger(logger.Discard()))
}

func TestVideoInfo(t *testing.T) {
	var gotURL, gotFormat string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Never Gonna Give You Up","author_name":"Rick Astley"}`))
	}, &fakeCaptions{})

	info, err := client.VideoInfo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", gotURL)
	assert.Equal(t, "json", gotFormat)
	assert.Equal(t, "dQw4w9WgXcQ", info.ID)
	assert.Equal(t, "Never Gonna Give You Up", info.Title)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", info.Thumbnail)
}

func TestVideoInfoNon200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	}, &fakeCaptions{})

	_, err := client.VideoInfo(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.CodeOf(err))
	assert.Equal(t, "Could not fetch video information", apperrors.Message(err))
}

func TestVideoInfoInvalidURL(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, &fakeCaptions{})

	_, err := client.VideoInfo(context.Background(), "not a video")
	require.Error(t, err)
	assert.Equal(t, "Invalid YouTube URL", apperrors.Message(err))
	assert.False(t, called, "oEmbed must not be called for an invalid URL")
}

func TestVideoInfoMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}, &fakeCaptions{})

	_, err := client.VideoInfo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperrors.CodeOf(err))
}

func TestTranscript(t *testing.T) {
	captions := &fakeCaptions{text: "never gonna\ngive you up\n\nnever gonna  let you down\n"}
	client := newTestClient(t, http.NotFound, captions)

	text, err := client.Transcript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "never gonna give you up never gonna let you down", text)
	assert.Equal(t, "dQw4w9WgXcQ", captions.gotID)
	assert.Equal(t, []string{"en", "de"}, captions.gotLangs)
}

func TestTranscriptFailure(t *testing.T) {
	captions := &fakeCaptions{err: errors.New("captions not found")}
	client := newTestClient(t, http.NotFound, captions)

	_, err := client.Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.CodeOf(err))
	assert.Equal(t, "Could not fetch transcript: captions not found", apperrors.Message(err))
}

func TestTranscriptEmpty(t *testing.T) {
	client := newTestClient(t, http.NotFound, &fakeCaptions{text: " \n "})

	_, err := client.Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestTranscriptInvalidURL(t *testing.T) {
	captions := &fakeCaptions{}
	client := newTestClient(t, http.NotFound, captions)

	_, err := client.Transcript(context.Background(), "https://youtu.be/nope")
	require.Error(t, err)
	assert.Zero(t, captions.callCount)
}

func TestJoinLines(t *testing.T) {
	assert.Equal(t, "a b c", JoinLines("a\nb\r\n  c "))
	assert.Equal(t, "", JoinLines("\n\n"))
}
