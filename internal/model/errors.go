// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ログイン時エラーコード。
// セッション調停の状態遷移が失敗エッジを辿った際の原因を表す。
const (
	ErrCodeStateMismatch    = "STATE_MISMATCH"
	ErrCodeExchangeFailed   = "EXCHANGE_FAILED"
	ErrCodeTokenInvalid     = "TOKEN_INVALID"
	ErrCodeSubjectMismatch  = "SUBJECT_MISMATCH"
	ErrCodeAudienceMismatch = "AUDIENCE_MISMATCH"
	ErrCodeNotConnected     = "NOT_CONNECTED"
	ErrCodeRevokeFailed     = "REVOKE_FAILED"
)

// カタログ操作のエラーコード。
const (
	ErrCodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	ErrCodeItemNotFound     = "ITEM_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
)

// NewStateMismatchError はstateトークン不一致エラーを生成する。
// ログイン完了リクエストは発行されたnonceと同一のstateを提示しなければならない。
func NewStateMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeStateMismatch,
		Message:  "stateパラメータが不正です。",
		Category: "auth",
		Action:   "ログインページからやり直してください。",
	}
}

// NewExchangeFailedError は認可コード交換失敗エラーを生成する。
func NewExchangeFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeExchangeFailed,
		Message:  "Googleからの認証情報の取得に失敗しました。",
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewTokenInvalidError はトークン検証失敗エラーを生成する。
func NewTokenInvalidError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeTokenInvalid,
		Message:  fmt.Sprintf("アクセストークンが無効です: %s", reason),
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewSubjectMismatchError はトークンのユーザーID不一致エラーを生成する。
// トークンすり替え攻撃への防御。
func NewSubjectMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeSubjectMismatch,
		Message:  "トークンのユーザーIDが一致しません。",
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewAudienceMismatchError はトークンのクライアントID不一致エラーを生成する。
// 他アプリ向けトークンの混同への防御。
func NewAudienceMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeAudienceMismatch,
		Message:  "トークンのクライアントIDがこのアプリと一致しません。",
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewNotConnectedError は未接続ユーザーの切断要求エラーを生成する。
func NewNotConnectedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotConnected,
		Message:  "現在ログインしていません。",
		Category: "auth",
		Action:   "ログインしてから操作してください。",
	}
}

// NewRevokeFailedError はトークン失効失敗エラーを生成する。
func NewRevokeFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRevokeFailed,
		Message:  "トークンの失効に失敗しました。",
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(nameOrID string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("指定されたカテゴリが見つかりません: %s", nameOrID),
		Category: "catalog",
		Action:   "カテゴリ名を確認してください。",
	}
}

// NewItemNotFoundError はアイテム未検出エラーを生成する。
func NewItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定されたアイテムが見つかりません: %s", itemID),
		Category: "catalog",
		Action:   "アイテムIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUnauthorizedError は所有権違反エラーを生成する。
// アイテムの編集・削除は所有者のみが行える。
func NewUnauthorizedError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  fmt.Sprintf("アイテム %s を操作する権限がありません。", itemID),
		Category: "auth",
		Action:   "自分が作成したアイテムのみ編集・削除できます。",
	}
}
