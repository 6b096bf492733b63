package validation

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/nijaru/lexai/errors"
)

// videoIDPattern matches the first 11-character id that follows "v=" or a slash.
var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`)

// ExtractVideoID returns the YouTube video id embedded in rawURL.
func ExtractVideoID(rawURL string) (string, error) {
	const op = "validation.ExtractVideoID"

	m := videoIDPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", errors.InvalidInput(op, nil, "Invalid YouTube URL")
	}
	return m[1], nil
}

func ValidateQuestion(question string) error {
	const op = "validation.ValidateQuestion"

	if strings.TrimSpace(question) == "" {
		return errors.InvalidInput(op, nil, "Question is required")
	}
	return nil
}

func ValidateSummary(summary string) error {
	const op = "validation.ValidateSummary"

	if strings.TrimSpace(summary) == "" {
		return errors.InvalidInput(op, nil, "Summary is required")
	}
	return nil
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "validation.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.E(op, nil, fmt.Sprintf("Method %s not allowed", r.Method), http.StatusMethodNotAllowed)
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.E(op, nil, "Request body too large", http.StatusRequestEntityTooLarge)
	}

	return nil
}
