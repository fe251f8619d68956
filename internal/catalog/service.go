// Package catalog はカテゴリとアイテムの管理機能を提供する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/catalog/internal/model"
	"github.com/hitoshi/catalog/internal/repository"
	"github.com/hitoshi/catalog/internal/security"
)

// recentItemCount はホーム画面に表示する最新アイテム数。
const recentItemCount = 3

// Service はカタログ操作のビジネスロジックを提供する。
// アイテムの作成・更新・削除は所有者チェックを通してのみ行える。
type Service struct {
	categoryRepo repository.CategoryRepository
	itemRepo     repository.ItemRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	categoryRepo repository.CategoryRepository,
	itemRepo repository.ItemRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		categoryRepo: categoryRepo,
		itemRepo:     itemRepo,
		sanitizer:    sanitizer,
	}
}

// ListCategories は全カテゴリを名前順で返す。
func (s *Service) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory は指定IDのカテゴリを返す。
func (s *Service) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, model.NewCategoryNotFoundError(categoryID)
	}
	return category, nil
}

// ListRecentItems はホーム画面用に作成日時の新しい順で最新3件のアイテムを返す。
func (s *Service) ListRecentItems(ctx context.Context) ([]*model.Item, error) {
	return s.itemRepo.ListRecent(ctx, recentItemCount)
}

// ListItemsByCategory は指定カテゴリのアイテム一覧を返す。
// カテゴリが存在しない場合はCATEGORY_NOT_FOUNDエラーを返す。
func (s *Service) ListItemsByCategory(ctx context.Context, categoryID string) (*model.Category, []*model.Item, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, model.NewCategoryNotFoundError(categoryID)
	}

	items, err := s.itemRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}

	return category, items, nil
}

// ListAllItems は全アイテムを作成日時の新しい順で返す。
func (s *Service) ListAllItems(ctx context.Context) ([]*model.Item, error) {
	return s.itemRepo.ListAll(ctx)
}

// GetItem は指定IDのアイテムを返す。
func (s *Service) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NewItemNotFoundError(itemID)
	}
	return item, nil
}

// CreateItemInput はアイテム作成の入力。
type CreateItemInput struct {
	Name         string
	Description  string
	CategoryName string
}

// CreateItem はアイテムを作成する。
// カテゴリは名前で解決し、見つからない場合はCATEGORY_NOT_FOUNDエラーを返す。
// 名前と説明はサニタイズしてから保存する。
func (s *Service) CreateItem(ctx context.Context, userID string, input CreateItemInput) (*model.Item, error) {
	name := s.sanitizer.Sanitize(input.Name)
	if name == "" {
		return nil, fmt.Errorf("item name is required")
	}

	category, err := s.categoryRepo.FindByName(ctx, strings.TrimSpace(input.CategoryName))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, model.NewCategoryNotFoundError(input.CategoryName)
	}

	now := time.Now()
	item := &model.Item{
		ID:          uuid.New().String(),
		Name:        name,
		Description: s.sanitizer.Sanitize(input.Description),
		CategoryID:  category.ID,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	slog.Info("item created",
		slog.String("item_id", item.ID),
		slog.String("user_id", userID),
		slog.String("category_id", category.ID),
	)

	return item, nil
}

// UpdateItemInput はアイテム更新の入力。空のフィールドは変更しない。
type UpdateItemInput struct {
	Name         string
	Description  string
	CategoryName string
}

// UpdateItem はアイテムの名前・説明・カテゴリを更新する。
// 所有者以外の更新はUNAUTHORIZEDエラーになり、アイテムは変更されない。
// 入力の空フィールドは既存の値を維持する。
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, input UpdateItemInput) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.NewItemNotFoundError(itemID)
	}

	// 所有者チェック
	if item.UserID != userID {
		slog.Warn("unauthorized item update attempt",
			slog.String("item_id", itemID),
			slog.String("owner_id", item.UserID),
			slog.String("user_id", userID),
		)
		return nil, model.NewUnauthorizedError(itemID)
	}

	if name := s.sanitizer.Sanitize(input.Name); name != "" {
		item.Name = name
	}
	if description := s.sanitizer.Sanitize(input.Description); description != "" {
		item.Description = description
	}
	if categoryName := strings.TrimSpace(input.CategoryName); categoryName != "" {
		category, err := s.categoryRepo.FindByName(ctx, categoryName)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, model.NewCategoryNotFoundError(categoryName)
		}
		item.CategoryID = category.ID
	}
	item.UpdatedAt = time.Now()

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	slog.Info("item updated",
		slog.String("item_id", itemID),
		slog.String("user_id", userID),
	)

	return item, nil
}

// DeleteItem はアイテムを削除する。
// 所有者以外の削除はUNAUTHORIZEDエラーになり、アイテムは削除されない。
func (s *Service) DeleteItem(ctx context.Context, userID, itemID string) error {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return model.NewItemNotFoundError(itemID)
	}

	// 所有者チェック
	if item.UserID != userID {
		slog.Warn("unauthorized item delete attempt",
			slog.String("item_id", itemID),
			slog.String("owner_id", item.UserID),
			slog.String("user_id", userID),
		)
		return model.NewUnauthorizedError(itemID)
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	slog.Info("item deleted",
		slog.String("item_id", itemID),
		slog.String("user_id", userID),
	)

	return nil
}
