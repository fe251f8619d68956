// Package profile はIdPプロフィール由来のデータ取得を提供する。
package profile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultAvatarMaxSize はアバター画像の最大サイズ（2MB）。
const defaultAvatarMaxSize = 2 * 1024 * 1024

// defaultAvatarTimeout はアバター取得のタイムアウト。
const defaultAvatarTimeout = 5 * time.Second

// SSRFValidator はSSRF防止機能のインターフェース。
// security.SSRFGuardServiceがこれを満たす。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// AvatarFetcher はIdPが報告するプロフィール画像URLから画像を取得する。
// 画像URLは外部入力のためSSRF検証を通してから取得する。
// 呼び出し側はベストエフォートで扱い、エラーはログインを妨げない。
type AvatarFetcher struct {
	ssrfGuard SSRFValidator
	timeout   time.Duration
	maxSize   int64
}

// NewAvatarFetcher はAvatarFetcherの新しいインスタンスを生成する。
// timeoutまたはmaxSizeがゼロの場合はデフォルト値を使用する。
func NewAvatarFetcher(ssrfGuard SSRFValidator, timeout time.Duration, maxSize int64) *AvatarFetcher {
	if timeout <= 0 {
		timeout = defaultAvatarTimeout
	}
	if maxSize <= 0 {
		maxSize = defaultAvatarMaxSize
	}
	return &AvatarFetcher{
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// Fetch は画像URLから画像データとMIMEタイプを取得する。
// SSRF検証に失敗したURL、画像以外のContent-Type、サイズ超過はエラーになる。
func (f *AvatarFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if rawURL == "" {
		return nil, "", fmt.Errorf("empty avatar URL")
	}

	// SSRF検証
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(rawURL); err != nil {
			return nil, "", fmt.Errorf("avatar URL blocked: %w", err)
		}
	}

	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create avatar request: %w", err)
	}
	req.Header.Set("User-Agent", "Catalog/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("avatar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("avatar fetch failed with status %d", resp.StatusCode)
	}

	// レスポンスボディを読み込み（サイズ上限あり）
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read avatar response: %w", err)
	}

	if int64(len(body)) > f.maxSize {
		return nil, "", fmt.Errorf("avatar exceeds max size %d bytes", f.maxSize)
	}

	mimeType := extractMimeType(resp.Header.Get("Content-Type"))
	if !isImageMime(mimeType) {
		return nil, "", fmt.Errorf("avatar has non-image content type: %s", mimeType)
	}

	return body, mimeType, nil
}

// getHTTPClient はHTTPクライアントを取得する。
func (f *AvatarFetcher) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(f.timeout, f.maxSize)
	}
	return &http.Client{Timeout: f.timeout}
}

// extractMimeType はContent-Typeヘッダーからメディアタイプを抽出する。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	// セミコロンの前の部分（charset等を除去）
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}

// isImageMime はMIMEタイプが画像かどうかを判定する。
func isImageMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
