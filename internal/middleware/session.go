// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/catalog/internal/session"
)

const sessionCookieName = "catalog_session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// SessionConfig はセッションミドルウェアのCookie設定。
type SessionConfig struct {
	CookieSecure bool
	CookieDomain string
	MaxAgeSec    int
}

// NewSessionMiddleware はHTTP Only Cookieでセッションを識別するミドルウェアを返す。
// Cookieが未設定または無効な場合は新しい匿名セッションを作成し、
// セッションをリクエストコンテキストに注入する。
// 匿名リクエストも通過させ、認証の要否は各ハンドラーが判断する。
func NewSessionMiddleware(store *session.Store, config SessionConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session

			// 1. CookieからセッションIDを取得
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				sess = store.Get(cookie.Value)
			}

			// 2. 不明・期限切れの場合は新しい匿名セッションを作成
			if sess == nil {
				created, err := store.Create()
				if err != nil {
					slog.Error("failed to create session",
						slog.String("error", err.Error()),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				sess = created

				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sess.ID,
					Path:     "/",
					Domain:   config.CookieDomain,
					MaxAge:   config.MaxAgeSec,
					HttpOnly: true,
					Secure:   config.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			// 3. セッションをコンテキストに注入
			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// ContextWithSession はコンテキストにセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
