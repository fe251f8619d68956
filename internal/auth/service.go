// Package auth はGoogle OAuth 2.0によるログインフローとセッション調停を提供する。
//
// ログインは以下の状態遷移を辿る。
//
//	ANONYMOUS → STATE_ISSUED → TOKEN_EXCHANGED → TOKEN_VERIFIED → USER_RESOLVED
//
// 各検証が失敗した場合はANONYMOUSに戻り、原因がAPIErrorとして報告される。
// 同一ユーザーの再ログインはプロフィール再取得をスキップして短絡する。
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/catalog/internal/model"
	"github.com/hitoshi/catalog/internal/repository"
	"github.com/hitoshi/catalog/internal/session"
)

// Provider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type Provider interface {
	// Exchange は認可コードをアクセストークンとIDトークンに交換する。
	Exchange(ctx context.Context, code string) (*TokenResponse, error)
	// VerifyToken はトークン検証エンドポイントでアクセストークンの情報を取得する。
	VerifyToken(ctx context.Context, accessToken string) (*TokenInfo, error)
	// FetchProfile はユーザーのプロフィール情報を取得する。
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
	// Revoke はアクセストークンを失効させる。
	Revoke(ctx context.Context, accessToken string) error
}

// AvatarFetcher はプロフィール画像の取得インターフェース。
type AvatarFetcher interface {
	// Fetch は画像URLから画像データとMIMEタイプを取得する。
	Fetch(ctx context.Context, rawURL string) (data []byte, mimeType string, err error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// ClientID はこのアプリに登録されたOAuthクライアントID。
	// トークンのaudience検証に使用する。
	ClientID string
}

// LoginResult はログイン完了の結果。
type LoginResult struct {
	UserID   string
	Username string
	Picture  string
	Email    string

	// AlreadyConnected は同一ユーザーの再ログインが短絡されたことを示す。
	AlreadyConnected bool
}

// Service はログインフローのセッション調停を担う。
// stateトークン検証、認可コード交換、トークン検証（subject/audience）、
// ローカルユーザー解決を順に行い、セッションにアイデンティティを束縛する。
type Service struct {
	provider Provider
	userRepo repository.UserRepository
	avatars  AvatarFetcher // nilの場合アバターのキャッシュを行わない
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	provider Provider,
	userRepo repository.UserRepository,
	avatars AvatarFetcher,
	config ServiceConfig,
) *Service {
	return &Service{
		provider: provider,
		userRepo: userRepo,
		avatars:  avatars,
		config:   config,
	}
}

// stateTokenChars はstateトークンに使用する文字集合。
const stateTokenChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// stateTokenLength はstateトークンの長さ。
const stateTokenLength = 32

// BeginLogin はCSRF対策用のstateトークンを生成してセッションに保存し、
// ログインUIに埋め込むために返す。
func (s *Service) BeginLogin(sess *session.Session) (string, error) {
	state, err := generateStateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	sess.State = state
	return state, nil
}

// CompleteLogin はログイン完了リクエストを検証し、セッションにアイデンティティを束縛する。
//
// 検証は順に行われ、失敗した時点でAPIErrorを返してセッションは変更されない。
//  1. stateトークンがセッションに発行されたものと一致すること
//  2. 認可コードがトークンに交換できること
//  3. トークン検証エンドポイントがエラーを報告しないこと
//  4. トークンのsubjectがIDトークンのsubと一致すること（トークンすり替え対策）
//  5. トークンのaudienceがこのアプリのクライアントIDと一致すること（トークン混同対策）
//
// セッションに同一subjectのクレデンシャルが既に束縛されている場合、
// プロフィール再取得とユーザー解決をスキップして短絡する（冪等な再ログイン）。
func (s *Service) CompleteLogin(ctx context.Context, sess *session.Session, stateToken, code string) (*LoginResult, error) {
	// 1. stateトークン検証
	if sess.State == "" || stateToken != sess.State {
		slog.Warn("login state mismatch", slog.String("session_id", sess.ID))
		return nil, model.NewStateMismatchError()
	}

	// 2. 認可コードをトークンに交換
	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		slog.Warn("authorization code exchange failed",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewExchangeFailedError()
	}

	// IDトークンからsubjectを取り出す
	subject, err := ExtractSubject(token.IDToken)
	if err != nil {
		return nil, model.NewTokenInvalidError(err.Error())
	}

	// 3. トークン検証エンドポイントへの問い合わせ
	info, err := s.provider.VerifyToken(ctx, token.AccessToken)
	if err != nil {
		return nil, model.NewTokenInvalidError(err.Error())
	}
	if info.Error != "" {
		return nil, model.NewTokenInvalidError(info.Error)
	}

	// 4. subject検証: トークンすり替え攻撃への防御
	if info.UserID != subject {
		slog.Warn("token subject mismatch",
			slog.String("session_id", sess.ID),
			slog.String("token_user_id", info.UserID),
		)
		return nil, model.NewSubjectMismatchError()
	}

	// 5. audience検証: 他アプリ向けトークンの混同への防御
	if info.IssuedTo != s.config.ClientID {
		slog.Warn("token audience mismatch",
			slog.String("session_id", sess.ID),
			slog.String("issued_to", info.IssuedTo),
		)
		return nil, model.NewAudienceMismatchError()
	}

	credential := Credential{
		AccessToken: token.AccessToken,
		SubjectID:   subject,
		Expiry:      time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}
	blob, err := EncodeCredential(credential)
	if err != nil {
		return nil, model.NewTokenInvalidError(err.Error())
	}

	// 同一ユーザーの再ログインは短絡する。
	// クレデンシャルは新しいものに差し替え、プロフィール再取得は行わない。
	if sess.IsConnected() && sess.SubjectID == subject {
		sess.Credential = blob
		slog.Info("user already connected",
			slog.String("session_id", sess.ID),
			slog.String("user_id", sess.UserID),
		)
		return &LoginResult{
			UserID:           sess.UserID,
			Username:         sess.Username,
			Picture:          sess.Picture,
			Email:            sess.Email,
			AlreadyConnected: true,
		}, nil
	}

	// プロフィール取得
	profile, err := s.provider.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	// ローカルユーザー解決: メールアドレスを自然キーとして作成または更新
	userID, err := s.resolveUser(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	// アバター画像のキャッシュはベストエフォート。失敗してもログインは成功する。
	s.cacheAvatar(ctx, userID, profile.Picture)

	// セッションにアイデンティティを束縛
	sess.Provider = "google"
	sess.Credential = blob
	sess.SubjectID = subject
	sess.UserID = userID
	sess.Username = profile.Name
	sess.Picture = profile.Picture
	sess.Email = profile.Email

	slog.Info("user logged in",
		slog.String("session_id", sess.ID),
		slog.String("user_id", userID),
	)

	return &LoginResult{
		UserID:   userID,
		Username: profile.Name,
		Picture:  profile.Picture,
		Email:    profile.Email,
	}, nil
}

// Disconnect はセッションに束縛されたクレデンシャルをIdPで失効させ、
// アイデンティティをクリアする。
// 未接続の場合はNOT_CONNECTEDエラー、失効失敗の場合はREVOKE_FAILEDエラーを返す。
func (s *Service) Disconnect(ctx context.Context, sess *session.Session) error {
	if !sess.IsConnected() {
		return model.NewNotConnectedError()
	}

	credential, err := DecodeCredential(sess.Credential)
	if err != nil {
		// クレデンシャルが壊れている場合は失効できないため、クリアのみ行う
		sess.ClearIdentity()
		return model.NewRevokeFailedError()
	}

	if err := s.provider.Revoke(ctx, credential.AccessToken); err != nil {
		slog.Warn("token revoke failed",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
		return model.NewRevokeFailedError()
	}

	sess.ClearIdentity()
	slog.Info("user disconnected", slog.String("session_id", sess.ID))
	return nil
}

// Logout はセッションを完全にログアウトする。
// クレデンシャルの失効はベストエフォートで、失敗してもローカルの
// アイデンティティは必ずクリアされる。
// 未接続の場合は何もしない。
func (s *Service) Logout(ctx context.Context, sess *session.Session) {
	if !sess.IsConnected() {
		return
	}

	if credential, err := DecodeCredential(sess.Credential); err == nil {
		if err := s.provider.Revoke(ctx, credential.AccessToken); err != nil {
			slog.Warn("best-effort revoke on logout failed",
				slog.String("session_id", sess.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	sess.ClearIdentity()
	slog.Info("user logged out", slog.String("session_id", sess.ID))
}

// resolveUser はメールアドレスを自然キーとしてローカルユーザーを解決する。
// 既存ユーザーの場合は名前・画像URLを最新のプロフィールで更新する。
func (s *Service) resolveUser(ctx context.Context, profile *Profile) (string, error) {
	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     profile.Email,
		Name:      profile.Name,
		Picture:   profile.Picture,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userID, err := s.userRepo.Upsert(ctx, user)
	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}

	if userID != user.ID {
		slog.Info("existing user logged in", slog.String("user_id", userID))
	} else {
		slog.Info("new user created",
			slog.String("user_id", userID),
			slog.String("email", profile.Email),
		)
	}

	return userID, nil
}

// cacheAvatar はプロフィール画像を取得してユーザーに保存する。
// ベストエフォートであり、失敗はログに残すのみ。
func (s *Service) cacheAvatar(ctx context.Context, userID, pictureURL string) {
	if s.avatars == nil || pictureURL == "" {
		return
	}

	data, mimeType, err := s.avatars.Fetch(ctx, pictureURL)
	if err != nil {
		slog.Warn("avatar fetch failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, data, mimeType); err != nil {
		slog.Warn("avatar save failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// generateStateToken は32文字の英大文字・数字からなるstateトークンを生成する。
func generateStateToken() (string, error) {
	b := make([]byte, stateTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = stateTokenChars[int(b[i])%len(stateTokenChars)]
	}
	return string(b), nil
}
