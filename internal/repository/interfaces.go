// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/catalog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Upsert はメールアドレスを自然キーとしてユーザーを作成または更新し、
	// 確定したユーザーIDを返す。emailのUNIQUE制約により、
	// 同一メールの同時初回ログインでも重複行は作られない。
	Upsert(ctx context.Context, user *model.User) (string, error)

	// UpdateAvatar はユーザーのアバター画像キャッシュを更新する。
	UpdateAvatar(ctx context.Context, userID string, data []byte, mimeType string) error
}

// CategoryRepository はカテゴリデータの永続化インターフェース。
// カテゴリはマイグレーションでシードされる固定セットのため読み取り専用。
type CategoryRepository interface {
	// List は全カテゴリを名前順で返す。
	List(ctx context.Context) ([]*model.Category, error)

	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// FindByName はカテゴリ名でカテゴリを検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Category, error)
}

// ItemRepository はアイテムデータの永続化インターフェース。
type ItemRepository interface {
	// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Item, error)

	// ListRecent は作成日時の新しい順に最大limit件のアイテムを返す。
	ListRecent(ctx context.Context, limit int) ([]*model.Item, error)

	// ListByCategory は指定カテゴリのアイテム一覧を作成日時の新しい順で返す。
	ListByCategory(ctx context.Context, categoryID string) ([]*model.Item, error)

	// ListAll は全アイテムを作成日時の新しい順で返す。JSONエンドポイント用。
	ListAll(ctx context.Context) ([]*model.Item, error)

	// Create はアイテムを作成する。
	Create(ctx context.Context, item *model.Item) error

	// Update はアイテムの名前・説明・カテゴリを更新する。
	Update(ctx context.Context, item *model.Item) error

	// Delete は指定IDのアイテムを削除する。
	Delete(ctx context.Context, id string) error
}
