// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はフォームから投稿されたアイテム名・説明文を
// サニタイズし、HTMLページへの描画時のXSSリスクからユーザーを保護する。
// bluemondayライブラリの厳格ポリシーにより、タグはすべて除去され
// プレーンテキストのみが保存される。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
// アイテム作成・編集時に使用される。
type ContentSanitizerService interface {
	// Sanitize は入力テキストからHTMLタグをすべて除去し、
	// エンティティをデコードしたプレーンテキストを返す。
	// 前後の空白は取り除かれる。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(input string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyを使用し、すべてのタグと属性を除去する。
// アイテムの名前・説明はプレーンテキストであり、HTMLを許可する理由がない。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストからHTMLタグをすべて除去したプレーンテキストを返す。
// bluemondayはタグ除去後にテキストをエスケープして返すため、
// 保存形式をプレーンテキストに揃えるべくエンティティをデコードする。
// 描画時のエスケープはhtml/templateが行う。
func (s *contentSanitizer) Sanitize(input string) string {
	cleaned := s.policy.Sanitize(input)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
