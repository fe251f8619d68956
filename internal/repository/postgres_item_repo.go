package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/catalog/internal/model"
)

// PostgresItemRepo はPostgreSQLを使用したアイテムリポジトリ。
type PostgresItemRepo struct {
	db *sql.DB
}

// NewPostgresItemRepo はPostgresItemRepoを生成する。
func NewPostgresItemRepo(db *sql.DB) *PostgresItemRepo {
	return &PostgresItemRepo{db: db}
}

const itemColumns = `id, name, description, category_id, user_id, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Description,
		&item.CategoryID, &item.UserID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID は指定IDのアイテムを取得する。見つからない場合はnilを返す。
func (r *PostgresItemRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return item, nil
}

// ListRecent は作成日時の新しい順に最大limit件のアイテムを返す。
// カタログトップの「最新アイテム」表示に使用する。
func (r *PostgresItemRepo) ListRecent(ctx context.Context, limit int) ([]*model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListByCategory は指定カテゴリのアイテム一覧を作成日時の新しい順で返す。
func (r *PostgresItemRepo) ListByCategory(ctx context.Context, categoryID string) ([]*model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE category_id = $1 ORDER BY created_at DESC, id DESC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by category: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListAll は全アイテムを作成日時の新しい順で返す。
func (r *PostgresItemRepo) ListAll(ctx context.Context) ([]*model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Create はアイテムを作成する。
func (r *PostgresItemRepo) Create(ctx context.Context, item *model.Item) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO items (id, name, description, category_id, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.Name, item.Description, item.CategoryID, item.UserID,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// Update はアイテムの名前・説明・カテゴリを更新する。
func (r *PostgresItemRepo) Update(ctx context.Context, item *model.Item) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE items SET name = $2, description = $3, category_id = $4, updated_at = $5
		 WHERE id = $1`,
		item.ID, item.Name, item.Description, item.CategoryID, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("item not found: %s", item.ID)
	}
	return nil
}

// Delete は指定IDのアイテムを削除する。
func (r *PostgresItemRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("item not found: %s", id)
	}
	return nil
}

// collectItems はrowsから全アイテムを読み取る。
func collectItems(rows *sql.Rows) ([]*model.Item, error) {
	var items []*model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// compile-time interface check
var _ ItemRepository = (*PostgresItemRepo)(nil)
