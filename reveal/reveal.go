// Package reveal plays text back a few characters at a time to mimic typing.
package reveal

import (
	"context"
	"time"
)

const (
	DefaultStep  = 5
	DefaultDelay = 5 * time.Millisecond
)

// Frames returns the growing prefixes of text, step runes apart. The last
// frame is always the complete text; an empty text yields a single empty frame.
func Frames(text string, step int) []string {
	if step <= 0 {
		step = DefaultStep
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}

	frames := make([]string, 0, (len(runes)+step-1)/step)
	for end := step; end < len(runes); end += step {
		frames = append(frames, string(runes[:end]))
	}
	return append(frames, text)
}

// Stream sends the frames of text on the returned channel, waiting delay
// between them. The channel is closed after the last frame or when ctx is done.
func Stream(ctx context.Context, text string, step int, delay time.Duration) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		var ticker *time.Ticker
		if delay > 0 {
			ticker = time.NewTicker(delay)
			defer ticker.Stop()
		}

		for i, frame := range Frames(text, step) {
			if i > 0 && ticker != nil {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return
				}
			}

			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
