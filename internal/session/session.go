// Package session はCookieで識別されるインメモリセッションストアを提供する。
// セッションはプロセス生存期間を超えて永続化されない。
package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Session はログインセッションの状態を表す。
// ログイン試行時に作成され、セッション調停により書き換えられ、
// ログアウトでアイデンティティ項目がクリアされる。
type Session struct {
	ID string

	// State はログイン完了時に照合されるCSRF対策用のnonce。
	State string

	// アイデンティティ項目。ログイン成功時に束縛され、ログアウトでクリアされる。
	Provider   string // 例: "google"
	Credential string // エンコード済みクレデンシャルblob
	SubjectID  string // IdPが報告する外部ユーザーID
	UserID     string // 解決済みローカルユーザーID
	Username   string
	Picture    string
	Email      string

	// Flashes は次回のページ描画で表示される通知メッセージ。
	Flashes []string

	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsAuthenticated はローカルユーザーが解決済みかどうかを返す。
func (s *Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// IsConnected はIdPのクレデンシャルが束縛されているかどうかを返す。
func (s *Session) IsConnected() bool {
	return s.Provider != "" && s.Credential != ""
}

// AddFlash は通知メッセージを追加する。
func (s *Session) AddFlash(message string) {
	s.Flashes = append(s.Flashes, message)
}

// PopFlashes は溜まった通知メッセージを取り出してクリアする。
func (s *Session) PopFlashes() []string {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// ClearIdentity は全アイデンティティ項目をクリアしてANONYMOUSに戻す。
// stateトークンとフラッシュメッセージは保持する。
func (s *Session) ClearIdentity() {
	s.Provider = ""
	s.Credential = ""
	s.SubjectID = ""
	s.UserID = ""
	s.Username = ""
	s.Picture = ""
	s.Email = ""
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
