package trace

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finboard/internal/log"
	"finboard/internal/log/logtest"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	rec := logtest.NewRecorder()
	m := NewMiddleware(rec.Logger(log.ComponentApp), func(*http.Request) string { return "10.0.0.9" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).InfoContext(r.Context(), "inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("request id = %q", seen)
	}
	if got := rr.Header().Get(HeaderRequestID); got != seen {
		t.Fatalf("response header = %q, want %q", got, seen)
	}

	var inside, done bool
	for _, r := range rec.Records() {
		switch r.Message {
		case "inside":
			inside = r.Attrs[log.FieldRequestID] == seen
		case "HTTP request completed":
			done = true
			if r.Level != slog.LevelWarn {
				t.Errorf("completion level = %v, want warn for 418", r.Level)
			}
			if r.Attrs[log.FieldClientIP] != "10.0.0.9" {
				t.Errorf("client ip = %v", r.Attrs[log.FieldClientIP])
			}
		}
	}
	if !inside {
		t.Error("handler logger does not carry the request id")
	}
	if !done {
		t.Error("completion was not logged")
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Errorf("TotalRequests = %d", m.GetMetrics().TotalRequests)
	}
}

func TestMiddleware_RequestIDHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"valid id is kept", "abc-123", true},
		{"invalid id is replaced", "bad id<script>", false},
		{"missing id is generated", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMiddleware(nil, nil)
			h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			got := rr.Header().Get(HeaderRequestID)
			if (got == tt.header) != tt.keep {
				t.Fatalf("request id = %q (sent %q)", got, tt.header)
			}
		})
	}
}
