package profile

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// stubSSRFValidator はSSRFValidatorのスタブ。
type stubSSRFValidator struct {
	validateErr error
}

func (s *stubSSRFValidator) ValidateURL(rawURL string) error {
	return s.validateErr
}

func (s *stubSSRFValidator) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	// テストではhttptestサーバー（ループバック）に接続するため素のクライアントを返す
	return &http.Client{Timeout: timeout}
}

func TestAvatarFetcher_Fetch(t *testing.T) {
	imageData := []byte("fake-png-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(imageData)
	}))
	defer server.Close()

	fetcher := NewAvatarFetcher(&stubSSRFValidator{}, 0, 0)

	data, mimeType, err := fetcher.Fetch(context.Background(), server.URL+"/avatar.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != string(imageData) {
		t.Errorf("data = %q", data)
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q, want image/png", mimeType)
	}
}

func TestAvatarFetcher_Fetch_EmptyURL(t *testing.T) {
	fetcher := NewAvatarFetcher(&stubSSRFValidator{}, 0, 0)

	if _, _, err := fetcher.Fetch(context.Background(), ""); err == nil {
		t.Error("Fetch with empty URL should fail")
	}
}

func TestAvatarFetcher_Fetch_SSRFBlocked(t *testing.T) {
	fetcher := NewAvatarFetcher(&stubSSRFValidator{validateErr: fmt.Errorf("blocked IP")}, 0, 0)

	if _, _, err := fetcher.Fetch(context.Background(), "http://169.254.169.254/avatar"); err == nil {
		t.Error("Fetch should fail when SSRF validation rejects the URL")
	}
}

func TestAvatarFetcher_Fetch_NonImageContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer server.Close()

	fetcher := NewAvatarFetcher(&stubSSRFValidator{}, 0, 0)

	if _, _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Fetch should reject non-image content types")
	}
}

func TestAvatarFetcher_Fetch_ExceedsMaxSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte(strings.Repeat("x", 200)))
	}))
	defer server.Close()

	fetcher := NewAvatarFetcher(&stubSSRFValidator{}, time.Second, 100)

	if _, _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Fetch should reject responses exceeding max size")
	}
}

func TestAvatarFetcher_Fetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewAvatarFetcher(&stubSSRFValidator{}, 0, 0)

	if _, _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Fetch should fail on non-2xx status")
	}
}

func TestExtractMimeType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", "image/png"},
		{"image/jpeg; charset=utf-8", "image/jpeg"},
		{"IMAGE/PNG", "image/png"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := extractMimeType(tt.contentType); got != tt.want {
			t.Errorf("extractMimeType(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}
