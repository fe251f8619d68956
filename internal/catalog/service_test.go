package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/catalog/internal/model"
	"github.com/hitoshi/catalog/internal/repository"
	"github.com/hitoshi/catalog/internal/security"
)

// mockCategoryRepo はCategoryRepositoryのモック実装。
type mockCategoryRepo struct {
	listFunc       func(ctx context.Context) ([]*model.Category, error)
	findByIDFunc   func(ctx context.Context, id string) (*model.Category, error)
	findByNameFunc func(ctx context.Context, name string) (*model.Category, error)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	return m.listFunc(ctx)
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockCategoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	return m.findByNameFunc(ctx, name)
}

var _ repository.CategoryRepository = (*mockCategoryRepo)(nil)

// mockItemRepo はItemRepositoryのモック実装。
type mockItemRepo struct {
	findByIDFunc       func(ctx context.Context, id string) (*model.Item, error)
	listRecentFunc     func(ctx context.Context, limit int) ([]*model.Item, error)
	listByCategoryFunc func(ctx context.Context, categoryID string) ([]*model.Item, error)
	listAllFunc        func(ctx context.Context) ([]*model.Item, error)
	createFunc         func(ctx context.Context, item *model.Item) error
	updateFunc         func(ctx context.Context, item *model.Item) error
	deleteFunc         func(ctx context.Context, id string) error
}

func (m *mockItemRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockItemRepo) ListRecent(ctx context.Context, limit int) ([]*model.Item, error) {
	return m.listRecentFunc(ctx, limit)
}

func (m *mockItemRepo) ListByCategory(ctx context.Context, categoryID string) ([]*model.Item, error) {
	return m.listByCategoryFunc(ctx, categoryID)
}

func (m *mockItemRepo) ListAll(ctx context.Context) ([]*model.Item, error) {
	return m.listAllFunc(ctx)
}

func (m *mockItemRepo) Create(ctx context.Context, item *model.Item) error {
	return m.createFunc(ctx, item)
}

func (m *mockItemRepo) Update(ctx context.Context, item *model.Item) error {
	return m.updateFunc(ctx, item)
}

func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

var _ repository.ItemRepository = (*mockItemRepo)(nil)

var testCategories = map[string]*model.Category{
	"Soccer":   {ID: "cat-1", Name: "Soccer"},
	"Baseball": {ID: "cat-2", Name: "Baseball"},
}

func newTestCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{
		listFunc: func(ctx context.Context) ([]*model.Category, error) {
			return []*model.Category{testCategories["Baseball"], testCategories["Soccer"]}, nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.Category, error) {
			for _, c := range testCategories {
				if c.ID == id {
					return c, nil
				}
			}
			return nil, nil
		},
		findByNameFunc: func(ctx context.Context, name string) (*model.Category, error) {
			return testCategories[name], nil
		},
	}
}

func newTestService(itemRepo *mockItemRepo) *Service {
	return NewService(newTestCategoryRepo(), itemRepo, security.NewContentSanitizer())
}

func TestService_GetCategory_NotFound(t *testing.T) {
	service := newTestService(&mockItemRepo{})

	_, err := service.GetCategory(context.Background(), "no-such-id")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Fatalf("error = %v, want CATEGORY_NOT_FOUND", err)
	}
}

func TestService_ListRecentItems_RequestsThree(t *testing.T) {
	gotLimit := 0
	itemRepo := &mockItemRepo{
		listRecentFunc: func(ctx context.Context, limit int) ([]*model.Item, error) {
			gotLimit = limit
			return []*model.Item{}, nil
		},
	}
	service := newTestService(itemRepo)

	if _, err := service.ListRecentItems(context.Background()); err != nil {
		t.Fatalf("ListRecentItems failed: %v", err)
	}
	if gotLimit != 3 {
		t.Errorf("limit = %d, want 3", gotLimit)
	}
}

func TestService_ListItemsByCategory_UnknownCategory(t *testing.T) {
	service := newTestService(&mockItemRepo{})

	_, _, err := service.ListItemsByCategory(context.Background(), "no-such-id")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Fatalf("error = %v, want CATEGORY_NOT_FOUND", err)
	}
}

func TestService_CreateItem(t *testing.T) {
	var created *model.Item
	itemRepo := &mockItemRepo{
		createFunc: func(ctx context.Context, item *model.Item) error {
			created = item
			return nil
		},
	}
	service := newTestService(itemRepo)

	item, err := service.CreateItem(context.Background(), "user-7", CreateItemInput{
		Name:         "Ball",
		Description:  "Kick it.",
		CategoryName: "Soccer",
	})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	if created == nil {
		t.Fatal("item should be persisted")
	}
	if item.CategoryID != "cat-1" {
		t.Errorf("CategoryID = %q, want cat-1", item.CategoryID)
	}
	if item.UserID != "user-7" {
		t.Errorf("UserID = %q, want user-7", item.UserID)
	}
	if item.Name != "Ball" || item.Description != "Kick it." {
		t.Errorf("item = %+v", item)
	}
	if item.ID == "" {
		t.Error("item ID should be generated")
	}
}

func TestService_CreateItem_UnknownCategoryName(t *testing.T) {
	createCalled := false
	itemRepo := &mockItemRepo{
		createFunc: func(ctx context.Context, item *model.Item) error {
			createCalled = true
			return nil
		},
	}
	service := newTestService(itemRepo)

	_, err := service.CreateItem(context.Background(), "user-7", CreateItemInput{
		Name:         "Ball",
		CategoryName: "Quidditch",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Fatalf("error = %v, want CATEGORY_NOT_FOUND", err)
	}
	if createCalled {
		t.Error("item should not be persisted when category is unknown")
	}
}

func TestService_CreateItem_SanitizesInput(t *testing.T) {
	var created *model.Item
	itemRepo := &mockItemRepo{
		createFunc: func(ctx context.Context, item *model.Item) error {
			created = item
			return nil
		},
	}
	service := newTestService(itemRepo)

	_, err := service.CreateItem(context.Background(), "user-7", CreateItemInput{
		Name:         "<script>alert(1)</script>Bat",
		Description:  "<b>Wooden</b> bat",
		CategoryName: "Baseball",
	})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	if created.Name != "Bat" {
		t.Errorf("Name = %q, want Bat", created.Name)
	}
	if created.Description != "Wooden bat" {
		t.Errorf("Description = %q, want Wooden bat", created.Description)
	}
}

func TestService_CreateItem_EmptyNameRejected(t *testing.T) {
	service := newTestService(&mockItemRepo{})

	if _, err := service.CreateItem(context.Background(), "user-7", CreateItemInput{
		Name:         "<script></script>",
		CategoryName: "Soccer",
	}); err == nil {
		t.Error("CreateItem should reject names that sanitize to empty")
	}
}

func TestService_UpdateItem_OwnerCanUpdate(t *testing.T) {
	stored := &model.Item{
		ID:          "item-1",
		Name:        "Ball",
		Description: "Kick it.",
		CategoryID:  "cat-1",
		UserID:      "user-7",
		CreatedAt:   time.Now().Add(-time.Hour),
	}
	var updated *model.Item
	itemRepo := &mockItemRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			copied := *stored
			return &copied, nil
		},
		updateFunc: func(ctx context.Context, item *model.Item) error {
			updated = item
			return nil
		},
	}
	service := newTestService(itemRepo)

	item, err := service.UpdateItem(context.Background(), "user-7", "item-1", UpdateItemInput{
		Name:         "Soccer Ball",
		CategoryName: "Baseball",
	})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	if updated == nil {
		t.Fatal("update should be persisted")
	}
	if item.Name != "Soccer Ball" {
		t.Errorf("Name = %q, want Soccer Ball", item.Name)
	}
	// 空の説明は既存の値を維持する
	if item.Description != "Kick it." {
		t.Errorf("Description = %q, empty input should keep existing value", item.Description)
	}
	if item.CategoryID != "cat-2" {
		t.Errorf("CategoryID = %q, want cat-2", item.CategoryID)
	}
}

func TestService_UpdateItem_NonOwnerRejected(t *testing.T) {
	updateCalled := false
	itemRepo := &mockItemRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return &model.Item{ID: "item-1", Name: "Ball", UserID: "user-7"}, nil
		},
		updateFunc: func(ctx context.Context, item *model.Item) error {
			updateCalled = true
			return nil
		},
	}
	service := newTestService(itemRepo)

	_, err := service.UpdateItem(context.Background(), "user-8", "item-1", UpdateItemInput{Name: "Stolen"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("error = %v, want UNAUTHORIZED", err)
	}
	if updateCalled {
		t.Error("non-owner update must not be persisted")
	}
}

func TestService_UpdateItem_NotFound(t *testing.T) {
	itemRepo := &mockItemRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return nil, nil
		},
	}
	service := newTestService(itemRepo)

	_, err := service.UpdateItem(context.Background(), "user-7", "ghost", UpdateItemInput{})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeItemNotFound {
		t.Fatalf("error = %v, want ITEM_NOT_FOUND", err)
	}
}

func TestService_DeleteItem_OwnerCanDelete(t *testing.T) {
	deletedID := ""
	itemRepo := &mockItemRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return &model.Item{ID: id, UserID: "user-7"}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	service := newTestService(itemRepo)

	if err := service.DeleteItem(context.Background(), "user-7", "item-1"); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if deletedID != "item-1" {
		t.Errorf("deleted ID = %q, want item-1", deletedID)
	}
}

func TestService_DeleteItem_NonOwnerRejected(t *testing.T) {
	deleteCalled := false
	itemRepo := &mockItemRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return &model.Item{ID: id, UserID: "user-7"}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleteCalled = true
			return nil
		},
	}
	service := newTestService(itemRepo)

	err := service.DeleteItem(context.Background(), "user-8", "item-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("error = %v, want UNAUTHORIZED", err)
	}
	if deleteCalled {
		t.Error("non-owner delete must not be persisted")
	}
}

func TestService_GetItem_NotFound(t *testing.T) {
	itemRepo := &mockItemRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Item, error) {
			return nil, nil
		},
	}
	service := newTestService(itemRepo)

	_, err := service.GetItem(context.Background(), "ghost")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeItemNotFound {
		t.Fatalf("error = %v, want ITEM_NOT_FOUND", err)
	}
}
