package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLoggingMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()

	var sawLogger bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawLogger = GetLogger(r.Context()).(*logrus.Entry)
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	Chain(handler, RequestID(), Logging(logger)).ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusTeapot)
	}
	if !sawLogger {
		t.Error("expected request-scoped logger in context")
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level for 4xx, got %s", entry.Level)
	}
	if entry.Data["status"] != http.StatusTeapot {
		t.Errorf("expected status field %d, got %v", http.StatusTeapot, entry.Data["status"])
	}
	if entry.Data["request_id"] != rr.Header().Get(RequestIDHeader) {
		t.Errorf("request id mismatch: %v vs %s", entry.Data["request_id"], rr.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDReusesHeader(t *testing.T) {
	var got string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	RequestID()(handler).ServeHTTP(rr, req)

	if got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	if rr.Header().Get(RequestIDHeader) != "abc" {
		t.Errorf("expected response header abc, got %q", rr.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDGenerates(t *testing.T) {
	var got string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	})

	RequestID()(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if len(got) != 36 {
		t.Errorf("expected a uuid, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	Recovery(logger)(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Message != "Panic recovered" {
		t.Errorf("expected panic to be logged, got %v", hook.Entries)
	}
}

func TestRateLimiter(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	limited := NewRateLimiter(1, 2).Middleware(handler)

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ask", nil))
		codes[i] = rr.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected burst of two to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request to be limited, got %d", codes[2])
	}
}

func TestGetLoggerDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetLogger(req.Context()) == nil {
		t.Error("expected fallback logger")
	}
	if GetRequestID(req.Context()) != "" {
		t.Error("expected empty request id")
	}
}
