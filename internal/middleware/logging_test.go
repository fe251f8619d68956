package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/catalog/internal/logger"
	"github.com/hitoshi/catalog/internal/session"
)

func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Setup(&buf, 0)

	mw := NewLoggingMiddleware(log)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/catalog/item/add", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output should be JSON: %v: %s", err, buf.String())
	}

	if entry["msg"] != "http_request" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["method"] != "POST" {
		t.Errorf("method = %v", entry["method"])
	}
	if entry["path"] != "/catalog/item/add" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("status = %v", entry["status"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms should be logged")
	}
}

func TestLoggingMiddleware_IncludesUserIDForAuthenticatedSession(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Setup(&buf, 0)

	mw := NewLoggingMiddleware(log)
	handler := mw(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	sess := &session.Session{ID: "sess-1", UserID: "user-7"}
	req = req.WithContext(ContextWithSession(req.Context(), sess))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output should be JSON: %v", err)
	}
	if entry["user_id"] != "user-7" {
		t.Errorf("user_id = %v, want user-7", entry["user_id"])
	}
}

func TestStatusRecorder_DefaultsTo200OnWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w}

	rec.Write([]byte("body"))

	if rec.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", rec.statusCode)
	}
}
