package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/catalog/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, avatar_data, avatar_mime, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Picture,
		&user.AvatarData, &user.AvatarMime, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture, avatar_data, avatar_mime, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Picture,
		&user.AvatarData, &user.AvatarMime, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// Upsert はメールアドレスを自然キーとしてユーザーを作成または更新し、
// 確定したユーザーIDを返す。既存行がある場合は名前とプロフィール画像URLを
// 最新のIdPプロファイルで更新する。
func (r *PostgresUserRepo) Upsert(ctx context.Context, user *model.User) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, name, picture, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE
		 SET name = EXCLUDED.name, picture = EXCLUDED.picture, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		user.ID, user.Email, user.Name, user.Picture, user.CreatedAt, user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}
	return id, nil
}

// UpdateAvatar はユーザーのアバター画像キャッシュを更新する。
func (r *PostgresUserRepo) UpdateAvatar(ctx context.Context, userID string, data []byte, mimeType string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET avatar_data = $2, avatar_mime = $3, updated_at = now() WHERE id = $1`,
		userID, data, mimeType,
	)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
