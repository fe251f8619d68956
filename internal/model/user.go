// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// GoogleのOAuthプロファイルから初回ログイン時に作成され、
// メールアドレスを自然キーとして同一ユーザーを識別する。
// アプリケーションからユーザーを削除することはない。
type User struct {
	ID         string
	Email      string
	Name       string
	Picture    string // IdPから取得したプロフィール画像URL
	AvatarData []byte // SSRF検証付きで取得した画像のキャッシュ（取得失敗時はnil）
	AvatarMime string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
