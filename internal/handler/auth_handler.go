package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/catalog/internal/auth"
	"github.com/hitoshi/catalog/internal/metrics"
	"github.com/hitoshi/catalog/internal/model"
	"github.com/hitoshi/catalog/internal/session"
	"github.com/hitoshi/catalog/internal/view"
)

// maxAuthCodeSize はログイン完了リクエストボディ（認可コード）の上限。
const maxAuthCodeSize = 4 * 1024

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	BeginLogin(sess *session.Session) (string, error)
	CompleteLogin(ctx context.Context, sess *session.Session, stateToken, code string) (*auth.LoginResult, error)
	Disconnect(ctx context.Context, sess *session.Session) error
	Logout(ctx context.Context, sess *session.Session)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	GoogleClientID string
}

// AuthHandler はOAuthログインフローのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	store    *session.Store
	renderer *view.Renderer
	metrics  metrics.MetricsCollector
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(
	service AuthServiceInterface,
	store *session.Store,
	renderer *view.Renderer,
	collector metrics.MetricsCollector,
	config AuthHandlerConfig,
) *AuthHandler {
	return &AuthHandler{
		service:  service,
		store:    store,
		renderer: renderer,
		metrics:  collector,
		config:   config,
	}
}

// Login はstateトークンを発行してログインページを描画する。
// GET /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	state, err := h.service.BeginLogin(sess)
	if err != nil {
		slog.Error("failed to begin login", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	saveSession(h.store, sess)

	renderPage(w, r, h.store, h.renderer, sess, "login.html", "ログイン", view.LoginData{
		State:    state,
		ClientID: h.config.GoogleClientID,
	})
}

// Gconnect はログイン完了リクエストを処理する。
// POST /gconnect?state=xxx（認可コードはリクエストボディ）
// 成功時はウェルカムHTMLを返し、検証失敗時はJSONエラーを返す。
func (h *AuthHandler) Gconnect(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	stateToken := r.URL.Query().Get("state")

	// 認可コードはボディそのもの
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthCodeSize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	code := strings.TrimSpace(string(body))

	result, err := h.service.CompleteLogin(r.Context(), sess, stateToken, code)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			h.metrics.RecordLoginFailure(apiErr.Code)
		} else {
			h.metrics.RecordLoginFailure("INTERNAL_ERROR")
		}
		writeServiceError(w, err)
		return
	}
	saveSession(h.store, sess)
	h.metrics.RecordLoginSuccess()

	// 同一ユーザーの再ログインはJSONで応答
	if result.AlreadyConnected {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "すでにログインしています。",
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.RenderStandalone(w, "welcome.html", view.WelcomeData{
		Username: result.Username,
		Picture:  result.Picture,
	}); err != nil {
		slog.Error("failed to render welcome", slog.String("error", err.Error()))
	}
}

// Gdisconnect はIdPのクレデンシャルを失効させる。
// GET /gdisconnect
// 結果はJSONで返す。未接続は401、失効失敗は400。
func (h *AuthHandler) Gdisconnect(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	if err := h.service.Disconnect(r.Context(), sess); err != nil {
		// クレデンシャルが壊れていた場合はクリア済みのため保存する
		saveSession(h.store, sess)
		writeServiceError(w, err)
		return
	}
	saveSession(h.store, sess)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "ログアウトしました。",
	})
}

// Logout は完全なログアウトを行い、カタログへリダイレクトする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	wasConnected := sess.IsConnected()
	h.service.Logout(r.Context(), sess)

	message := "ログアウトしました。"
	if !wasConnected {
		message = "ログインしていません。"
	}
	redirectWithFlash(w, r, h.store, sess, message, "/catalog")
}
