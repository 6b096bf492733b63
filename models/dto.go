package models

// VideoURLRequest is the body of POST /api/video-info and POST /api/summarize.
type VideoURLRequest struct {
	URL string `json:"url"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

// QuestionRequest is the body of POST /api/answer.
type QuestionRequest struct {
	Summary  string `json:"summary"`
	Question string `json:"question"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is returned by the API for every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
