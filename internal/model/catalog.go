// Package model はドメインモデルを定義する。
package model

import "time"

// Category はカタログのカテゴリを表す。
// カテゴリは固定セットで、マイグレーションによりシードされる。
// アプリケーションからの作成・削除は行わない。
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Item はカタログのアイテムを表す。
// 所有者（UserID）のみが編集・削除できる。
type Item struct {
	ID          string
	Name        string
	Description string // サニタイズ済みテキスト
	CategoryID  string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
