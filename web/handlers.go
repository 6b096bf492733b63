package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/nijaru/lexai/errors"
	"github.com/nijaru/lexai/middleware"
	"github.com/nijaru/lexai/models"
	"github.com/nijaru/lexai/reveal"
	"github.com/nijaru/lexai/session"
	"github.com/nijaru/lexai/validation"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookie = "lexai_session"
	maxFormBytes  = 64 << 10
)

type pageData struct {
	Title   string
	Tagline string
	Footer  string

	Error       string
	VideoURL    string
	Info        *models.VideoInfo
	HasSummary  bool
	SummaryHTML template.HTML
	Reveal      bool
	Question    string
	AnswerHTML  template.HTML
}

var formOpts = validation.RequestValidationOpts{
	MaxContentLength: maxFormBytes,
	AllowedMethods:   []string{http.MethodPost},
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	state := sess.State()

	data := pageData{
		Title:       pageTitle,
		Tagline:     pageTagline,
		Footer:      pageFooter,
		Error:       sess.TakeFlash(),
		VideoURL:    state.VideoURL,
		Info:        state.Info,
		HasSummary:  state.Summary != "",
		SummaryHTML: renderMarkdown(state.Summary),
		Reveal:      state.Reveal,
		Question:    state.Question,
		AnswerHTML:  renderMarkdown(state.Answer),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	sess := s.session(w, r)
	url := strings.TrimSpace(r.PostFormValue("url"))

	if url == "" {
		sess.SetVideo("", nil)
		redirectHome(w, r)
		return
	}

	info, err := s.service.VideoInfo(r.Context(), url)
	if err != nil {
		s.fail(r, sess, "Error fetching video info", err)
		// an unchanged URL keeps the video and summary already shown
		if url != sess.State().VideoURL {
			sess.SetVideo(url, nil)
		}
		redirectHome(w, r)
		return
	}

	sess.SetVideo(url, info)
	redirectHome(w, r)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	sess := s.session(w, r)
	url := sess.State().VideoURL

	summary, err := s.service.Summarize(r.Context(), url)
	if err != nil {
		s.fail(r, sess, "Error summarizing video", err)
		redirectHome(w, r)
		return
	}

	// the URL may have changed while the summary was being generated
	if sess.State().VideoURL == url {
		sess.SetSummary(summary)
	}
	redirectHome(w, r)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	sess := s.session(w, r)
	question := strings.TrimSpace(r.PostFormValue("question"))

	answer, err := s.service.Answer(r.Context(), sess.State().Summary, question)
	if err != nil {
		s.fail(r, sess, "Error answering question", err)
		sess.SetAnswer(question, "")
		redirectHome(w, r)
		return
	}

	sess.SetAnswer(question, answer)
	redirectHome(w, r)
}

// handleSummaryStream plays a fresh summary back as server-sent events: a
// "chunk" event per growing prefix, then a "done" event with the rendered HTML.
func (s *Server) handleSummaryStream(w http.ResponseWriter, r *http.Request) {
	const op = "web.handleSummaryStream"

	sess, ok := s.existingSession(r)
	if !ok || sess.State().Summary == "" {
		err := errors.NotFound(op, nil, "No summary available")
		http.Error(w, err.Message, err.Code)
		return
	}
	state := sess.State()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if state.Reveal {
		frames := reveal.Stream(r.Context(), state.Summary, s.config.UI.RevealStep, s.config.UI.RevealDelay)
		for frame := range frames {
			if err := writeEvent(w, "chunk", frame); err != nil {
				return
			}
			flusher.Flush()
		}
		if r.Context().Err() != nil {
			return
		}
		sess.MarkRevealed()
	}

	if err := writeEvent(w, "done", map[string]string{"html": string(renderMarkdown(state.Summary))}); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Warn("Failed to finish summary stream")
		return
	}
	flusher.Flush()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.config.Version,
		"backend":   s.config.UI.Backend,
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := validation.ValidateRequest(r, formOpts); err != nil {
		http.Error(w, errors.Message(err), errors.CodeOf(err))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return false
	}
	return true
}

// fail logs err and queues "<prefix>: <message>" for the next render.
func (s *Server) fail(r *http.Request, sess *session.Session, prefix string, err error) {
	entry := middleware.GetLogger(r.Context()).WithError(err).WithField("status", errors.CodeOf(err))
	if errors.CodeOf(err) >= http.StatusInternalServerError {
		entry.Error(prefix)
	} else {
		entry.Warn(prefix)
	}
	sess.SetFlash(fmt.Sprintf("%s: %s", prefix, errors.Message(err)))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if sess, ok := s.existingSession(r); ok {
		return sess
	}

	sess := s.sessions.Create()
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.config.IsProduction(),
	}
	// no MaxAge: expiry is enforced by the store's sliding TTL
	http.SetCookie(w, cookie)

	middleware.GetLogger(r.Context()).WithFields(logrus.Fields{
		"session_id": sess.ID,
		"sessions":   s.sessions.Len(),
	}).Debug("Session created")
	return sess
}

func (s *Server) existingSession(r *http.Request) (*session.Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(cookie.Value)
}

func writeEvent(w http.ResponseWriter, event string, payload interface{}) error {
	var data bytes.Buffer
	enc := json.NewEncoder(&data)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, bytes.TrimRight(data.Bytes(), "\n"))
	return err
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
