package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/catalog/internal/metrics"
	"github.com/hitoshi/catalog/internal/middleware"
	"github.com/hitoshi/catalog/internal/session"
	"github.com/hitoshi/catalog/internal/view"
	"github.com/prometheus/client_golang/prometheus"
)

// HealthChecker はヘルスチェックで疎通確認する対象のインターフェース。
// *sql.DBがこれを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Store    *session.Store
	Renderer *view.Renderer

	// HealthChecker はnilの場合DB疎通確認をスキップする。
	HealthChecker HealthChecker

	AuthService    AuthServiceInterface
	CatalogService CatalogServiceInterface

	Metrics     metrics.MetricsCollector
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger

	SessionConfig     middleware.SessionConfig
	CSRFConfig        middleware.CSRFConfig
	CORSAllowedOrigin string
	GoogleClientID    string
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Session → Logging → Metrics → RateLimit(General)
//
// フォームPOSTはCSRFミドルウェアで保護する。
// ログイン完了（/gconnect）はOAuthのstateトークンで保護されるためCSRF対象外。
// JSONエンドポイントにはCORSを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewSessionMiddleware(deps.Store, deps.SessionConfig))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(deps.RateLimiter.GeneralMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.Store, deps.Renderer, deps.Metrics, AuthHandlerConfig{
		GoogleClientID: deps.GoogleClientID,
	})
	catalogHandler := NewCatalogHandler(deps.CatalogService, deps.Store, deps.Renderer)
	itemHandler := NewItemHandler(deps.CatalogService, deps.Store, deps.Renderer, deps.Metrics)

	// --- 認証フロー ---
	r.Get("/login", authHandler.Login)
	r.With(deps.RateLimiter.MutationMiddleware()).Post("/gconnect", authHandler.Gconnect)
	r.Get("/gdisconnect", authHandler.Gdisconnect)
	r.Get("/logout", authHandler.Logout)

	// --- カタログ閲覧 ---
	r.Get("/", catalogHandler.Home)
	r.Get("/catalog", catalogHandler.Home)
	r.Get("/catalog/category/{id}", catalogHandler.Category)

	// JSONエンドポイント（CORS付き）
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Get("/catalog/categories/JSON", catalogHandler.CategoriesJSON)
		r.Get("/catalog/items/JSON", catalogHandler.ItemsJSON)
	})

	// --- アイテム操作（CSRF + 状態変更レート制限） ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.MutationMiddleware())

		r.Get("/catalog/item/add", itemHandler.AddForm)
		r.Post("/catalog/item/add", itemHandler.Add)
		r.Get("/catalog/item/{id}", catalogHandler.Item)
		r.Get("/catalog/item/{id}/edit", itemHandler.EditForm)
		r.Post("/catalog/item/{id}/edit", itemHandler.Edit)
		r.Get("/catalog/item/{id}/delete", itemHandler.DeleteForm)
		r.Post("/catalog/item/{id}/delete", itemHandler.Delete)
	})

	// --- 運用エンドポイント ---
	r.Get("/health", newHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	return r
}

// newHealthHandler は死活監視用のエンドポイントを返す。
// checkerが指定された場合はDBへの疎通を確認する。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
