package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/catalog/internal/catalog"
	"github.com/hitoshi/catalog/internal/metrics"
	"github.com/hitoshi/catalog/internal/model"
	"github.com/hitoshi/catalog/internal/session"
	"github.com/hitoshi/catalog/internal/view"
)

// ItemHandler はアイテムの作成・編集・削除のHTTPハンドラー。
// 全操作に認証が必要で、未認証はフラッシュ付きで/loginへリダイレクトする。
// 所有権違反もHTTPエラーではなくフラッシュ付きリダイレクトで通知する。
type ItemHandler struct {
	service  CatalogServiceInterface
	store    *session.Store
	renderer *view.Renderer
	metrics  metrics.MetricsCollector
}

// NewItemHandler はItemHandlerを生成する。
func NewItemHandler(
	service CatalogServiceInterface,
	store *session.Store,
	renderer *view.Renderer,
	collector metrics.MetricsCollector,
) *ItemHandler {
	return &ItemHandler{
		service:  service,
		store:    store,
		renderer: renderer,
		metrics:  collector,
	}
}

// AddForm はアイテム作成フォームを描画する。
// GET /catalog/item/add
func (h *ItemHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil || !requireLogin(w, r, h.store, sess) {
		return
	}

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	renderPage(w, r, h.store, h.renderer, sess, "item_add.html", "アイテムを追加", view.ItemFormData{
		Categories: toCategoryViews(categories),
	})
}

// Add はアイテムを作成する。
// POST /catalog/item/add
func (h *ItemHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil || !requireLogin(w, r, h.store, sess) {
		return
	}

	item, err := h.service.CreateItem(r.Context(), sess.UserID, catalog.CreateItemInput{
		Name:         r.PostFormValue("name"),
		Description:  r.PostFormValue("description"),
		CategoryName: r.PostFormValue("category"),
	})
	if err != nil {
		h.handleMutationError(w, r, sess, err, "/catalog/item/add")
		return
	}
	h.metrics.RecordItemCreated()

	redirectWithFlash(w, r, h.store, sess, "アイテムを追加しました。", "/catalog/item/"+item.ID)
}

// EditForm はアイテム編集フォームを描画する。
// GET /catalog/item/{id}/edit
func (h *ItemHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil || !requireLogin(w, r, h.store, sess) {
		return
	}

	itemID := chi.URLParam(r, "id")
	item, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// 所有者以外にはフォームを見せない
	if item.UserID != sess.UserID {
		redirectWithFlash(w, r, h.store, sess, "自分が作成したアイテムのみ編集できます。", "/catalog/item/"+itemID)
		return
	}

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	categoryNames := categoryNameIndex(categories)
	renderPage(w, r, h.store, h.renderer, sess, "item_edit.html", "アイテムを編集", view.ItemFormData{
		Item: view.ItemView{
			ID:           item.ID,
			Name:         item.Name,
			Description:  item.Description,
			CategoryID:   item.CategoryID,
			CategoryName: categoryNames[item.CategoryID],
		},
		Categories: toCategoryViews(categories),
	})
}

// Edit はアイテムを更新する。空のフィールドは変更しない。
// POST /catalog/item/{id}/edit
func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil || !requireLogin(w, r, h.store, sess) {
		return
	}

	itemID := chi.URLParam(r, "id")
	item, err := h.service.UpdateItem(r.Context(), sess.UserID, itemID, catalog.UpdateItemInput{
		Name:         r.PostFormValue("name"),
		Description:  r.PostFormValue("description"),
		CategoryName: r.PostFormValue("category"),
	})
	if err != nil {
		h.handleMutationError(w, r, sess, err, "/catalog/item/"+itemID)
		return
	}
	h.metrics.RecordItemUpdated()

	redirectWithFlash(w, r, h.store, sess, "アイテムを更新しました。", "/catalog/item/"+item.ID)
}

// DeleteForm はアイテム削除確認フォームを描画する。
// GET /catalog/item/{id}/delete
func (h *ItemHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil || !requireLogin(w, r, h.store, sess) {
		return
	}

	itemID := chi.URLParam(r, "id")
	item, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if item.UserID != sess.UserID {
		redirectWithFlash(w, r, h.store, sess, "自分が作成したアイテムのみ削除できます。", "/catalog/item/"+itemID)
		return
	}

	renderPage(w, r, h.store, h.renderer, sess, "item_delete.html", "アイテムを削除", view.ItemFormData{
		Item: view.ItemView{ID: item.ID, Name: item.Name},
	})
}

// Delete はアイテムを削除する。
// POST /catalog/item/{id}/delete
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil || !requireLogin(w, r, h.store, sess) {
		return
	}

	itemID := chi.URLParam(r, "id")
	if err := h.service.DeleteItem(r.Context(), sess.UserID, itemID); err != nil {
		h.handleMutationError(w, r, sess, err, "/catalog/item/"+itemID)
		return
	}
	h.metrics.RecordItemDeleted()

	redirectWithFlash(w, r, h.store, sess, "アイテムを削除しました。", "/catalog")
}

// handleMutationError はアイテム操作のエラーを処理する。
// 所有権違反はHTTPエラーではなくフラッシュ付きリダイレクトで通知し、
// それ以外はJSONエラーレスポンスを返す。
func (h *ItemHandler) handleMutationError(w http.ResponseWriter, r *http.Request, sess *session.Session, err error, backTo string) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUnauthorized {
		redirectWithFlash(w, r, h.store, sess, apiErr.Message, backTo)
		return
	}
	writeServiceError(w, err)
}
