// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/catalog/internal/middleware"
	"github.com/hitoshi/catalog/internal/model"
	"github.com/hitoshi/catalog/internal/session"
	"github.com/hitoshi/catalog/internal/view"
)

// mapAPIErrorToHTTPStatus はエラーコードをHTTPステータスコードに対応付ける。
// トークン検証エンドポイント自体の異常（TOKEN_INVALID）のみ500とし、
// 検証で拒否されたリクエストは401を返す。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeStateMismatch,
		model.ErrCodeExchangeFailed,
		model.ErrCodeSubjectMismatch,
		model.ErrCodeAudienceMismatch,
		model.ErrCodeNotConnected:
		return http.StatusUnauthorized
	case model.ErrCodeTokenInvalid:
		return http.StatusInternalServerError
	case model.ErrCodeRevokeFailed:
		return http.StatusBadRequest
	case model.ErrCodeCategoryNotFound,
		model.ErrCodeItemNotFound,
		model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError はサービス層のエラーをJSONレスポンスとして書き込む。
// APIError以外のエラーは詳細をログに残し、500を返す。
func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("unexpected service error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// sessionOrFail はコンテキストからセッションを取得する。
// セッションミドルウェアの外で呼ばれた場合は500を返しnilを返す。
func sessionOrFail(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		slog.Error("session missing from request context",
			slog.String("path", r.URL.Path),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil
	}
	return sess
}

// saveSession はセッションの変更をストアに書き戻す。失敗はログのみ。
func saveSession(store *session.Store, sess *session.Session) {
	if err := store.Save(sess); err != nil {
		slog.Error("failed to save session",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}
}

// redirectWithFlash はフラッシュメッセージを積んでリダイレクトする。
func redirectWithFlash(w http.ResponseWriter, r *http.Request, store *session.Store, sess *session.Session, message, location string) {
	sess.AddFlash(message)
	saveSession(store, sess)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// requireLogin は未認証リクエストをフラッシュ付きで/loginへリダイレクトする。
// 認証済みの場合はtrueを返す。
func requireLogin(w http.ResponseWriter, r *http.Request, store *session.Store, sess *session.Session) bool {
	if sess.IsAuthenticated() {
		return true
	}
	redirectWithFlash(w, r, store, sess, "ログインが必要です。", "/login")
	return false
}

// renderPage はレイアウト付きページを描画する共通処理。
// 溜まったフラッシュメッセージを取り出して表示する。
func renderPage(
	w http.ResponseWriter,
	r *http.Request,
	store *session.Store,
	renderer *view.Renderer,
	sess *session.Session,
	page, title string,
	data any,
) {
	flashes := sess.PopFlashes()
	if len(flashes) > 0 {
		saveSession(store, sess)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := renderer.Render(w, page, view.PageData{
		Title:     title,
		Username:  sess.Username,
		Picture:   sess.Picture,
		Flashes:   flashes,
		CSRFToken: middleware.CSRFTokenFromRequest(r),
		Data:      data,
	})
	if err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
