package session

import (
	"sync"
	"time"

	"github.com/nijaru/lexai/models"
)

// State is a snapshot of what one browser has entered and received so far.
type State struct {
	VideoURL string
	Info     *models.VideoInfo
	Summary  string
	// Reveal is set while a new summary still has to be played back with the typing effect.
	Reveal   bool
	Question string
	Answer   string
}

type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	flash    string
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, lastSeen: now}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetVideo records the URL being worked on. A different URL drops the summary
// and the last answer, which belonged to the previous video.
func (s *Session) SetVideo(url string, info *models.VideoInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if url != s.state.VideoURL {
		s.state = State{VideoURL: url}
	}
	s.state.Info = info
}

func (s *Session) SetSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Summary = summary
	s.state.Reveal = summary != ""
	s.state.Question = ""
	s.state.Answer = ""
}

// MarkRevealed reports whether a reveal was pending and clears it.
func (s *Session) MarkRevealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.state.Reveal
	s.state.Reveal = false
	return pending
}

func (s *Session) SetAnswer(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Question = question
	s.state.Answer = answer
}

// SetFlash stores a message shown on the next page render only.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = msg
}

func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
