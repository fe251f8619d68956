package repository

import (
	"testing"
)

// 各Postgresリポジトリがインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

func TestPostgresCategoryRepo_ImplementsInterface(t *testing.T) {
	var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
}

func TestPostgresItemRepo_ImplementsInterface(t *testing.T) {
	var _ ItemRepository = (*PostgresItemRepo)(nil)
}

func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresCategoryRepo_Initializes(t *testing.T) {
	repo := NewPostgresCategoryRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresItemRepo_Initializes(t *testing.T) {
	repo := NewPostgresItemRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}
