// ABOUTME: Tests for the request logging middleware and its ULID request IDs.
// ABOUTME: Covers header propagation, context lookup, status capture, and log line format.
package site

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	captureLog(t)

	var seen string
	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected request id header")
	}
	if _, err := ulid.Parse(id); err != nil {
		t.Errorf("expected a ULID, got %q: %v", id, err)
	}
	if seen != id {
		t.Errorf("context id %q does not match header %q", seen, id)
	}
}

func TestRequestLoggerUniqueIDs(t *testing.T) {
	captureLog(t)
	h := requestLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	ids := map[string]bool{}
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		if ids[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		ids[id] = true
	}
}

func TestRequestLoggerLogLine(t *testing.T) {
	buf := captureLog(t)

	h := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/x.css", nil))

	line := buf.String()
	for _, want := range []string{"method=GET", "path=/static/x.css", "status=418", "bytes=5", "id=" + rec.Header().Get(RequestIDHeader)} {
		if !strings.Contains(line, want) {
			t.Errorf("expected log line to contain %q, got %q", want, line)
		}
	}
}

func TestRequestLoggerDefaultStatus(t *testing.T) {
	buf := captureLog(t)

	h := requestLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("expected status=200 when handler writes nothing, got %q", buf.String())
	}
}

func TestRequestIDEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := RequestID(req.Context()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
