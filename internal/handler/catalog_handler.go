package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/catalog/internal/catalog"
	"github.com/hitoshi/catalog/internal/model"
	"github.com/hitoshi/catalog/internal/session"
	"github.com/hitoshi/catalog/internal/view"
)

// CatalogServiceInterface はカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*model.Category, error)
	ListRecentItems(ctx context.Context) ([]*model.Item, error)
	ListItemsByCategory(ctx context.Context, categoryID string) (*model.Category, []*model.Item, error)
	ListAllItems(ctx context.Context) ([]*model.Item, error)
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
	CreateItem(ctx context.Context, userID string, input catalog.CreateItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, userID, itemID string, input catalog.UpdateItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}

// CatalogHandler はカタログ閲覧のHTTPハンドラー。
type CatalogHandler struct {
	service  CatalogServiceInterface
	store    *session.Store
	renderer *view.Renderer
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface, store *session.Store, renderer *view.Renderer) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		store:    store,
		renderer: renderer,
	}
}

// Home はカテゴリ一覧と新着アイテム3件を描画する。
// GET / および GET /catalog
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items, err := h.service.ListRecentItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	categoryNames := categoryNameIndex(categories)
	renderPage(w, r, h.store, h.renderer, sess, "home.html", "カタログ", view.HomeData{
		Categories:  toCategoryViews(categories),
		LatestItems: toItemViews(items, categoryNames),
	})
}

// Category はカテゴリのアイテム一覧を描画する。
// GET /catalog/category/{id}
func (h *CatalogHandler) Category(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	categoryID := chi.URLParam(r, "id")
	category, items, err := h.service.ListItemsByCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	categoryNames := map[string]string{category.ID: category.Name}
	renderPage(w, r, h.store, h.renderer, sess, "category.html", category.Name, view.CategoryData{
		Category: view.CategoryView{ID: category.ID, Name: category.Name},
		Items:    toItemViews(items, categoryNames),
	})
}

// Item はアイテム詳細を描画する。所有者には編集・削除リンクを表示する。
// GET /catalog/item/{id}
func (h *CatalogHandler) Item(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}

	itemID := chi.URLParam(r, "id")
	item, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, err := h.service.GetCategory(r.Context(), item.CategoryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	renderPage(w, r, h.store, h.renderer, sess, "item.html", item.Name, view.ItemData{
		Item: view.ItemView{
			ID:           item.ID,
			Name:         item.Name,
			Description:  item.Description,
			CategoryID:   item.CategoryID,
			CategoryName: category.Name,
		},
		IsOwner: sess.IsAuthenticated() && sess.UserID == item.UserID,
	})
}

// categoryJSON はJSONエンドポイントのカテゴリ表現。
type categoryJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// itemJSON はJSONエンドポイントのアイテム表現。
type itemJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoriesJSON は全カテゴリをJSON配列で返す。
// GET /catalog/categories/JSON
func (h *CatalogHandler) CategoriesJSON(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]categoryJSON, len(categories))
	for i, c := range categories {
		result[i] = categoryJSON{ID: c.ID, Name: c.Name}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ItemsJSON は全アイテムをJSON配列で返す。
// GET /catalog/items/JSON
func (h *CatalogHandler) ItemsJSON(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAllItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]itemJSON, len(items))
	for i, item := range items {
		result[i] = itemJSON{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			CategoryID:  item.CategoryID,
			UserID:      item.UserID,
			CreatedAt:   item.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// categoryNameIndex はカテゴリID→名前の索引を作る。
func categoryNameIndex(categories []*model.Category) map[string]string {
	index := make(map[string]string, len(categories))
	for _, c := range categories {
		index[c.ID] = c.Name
	}
	return index
}

// toCategoryViews はモデルをテンプレート表現に変換する。
func toCategoryViews(categories []*model.Category) []view.CategoryView {
	views := make([]view.CategoryView, len(categories))
	for i, c := range categories {
		views[i] = view.CategoryView{ID: c.ID, Name: c.Name}
	}
	return views
}

// toItemViews はモデルをテンプレート表現に変換する。
func toItemViews(items []*model.Item, categoryNames map[string]string) []view.ItemView {
	views := make([]view.ItemView, len(items))
	for i, item := range items {
		views[i] = view.ItemView{
			ID:           item.ID,
			Name:         item.Name,
			Description:  item.Description,
			CategoryID:   item.CategoryID,
			CategoryName: categoryNames[item.CategoryID],
		}
	}
	return views
}
