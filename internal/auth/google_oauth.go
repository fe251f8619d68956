package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultGoogleTokenURL     = "https://oauth2.googleapis.com/token"
	defaultGoogleTokenInfoURL = "https://www.googleapis.com/oauth2/v1/tokeninfo"
	defaultGoogleUserInfoURL  = "https://www.googleapis.com/oauth2/v1/userinfo"
	defaultGoogleRevokeURL    = "https://accounts.google.com/o/oauth2/revoke"
)

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string

	// RedirectURL はクライアントサイドのpostmessageフローの場合 "postmessage" を指定する。
	RedirectURL string

	// テスト用にオーバーライド可能なURL
	TokenURL     string
	TokenInfoURL string
	UserInfoURL  string
	RevokeURL    string
}

// GoogleOAuthProvider はGoogle OAuth 2.0のHTTP APIを呼び出すクライアント。
// 認可コード交換、トークン検証、プロフィール取得、トークン失効の4エンドポイントを扱う。
type GoogleOAuthProvider struct {
	config GoogleOAuthConfig
	client *http.Client
}

// NewGoogleOAuthProvider はGoogleOAuthProviderを生成する。
func NewGoogleOAuthProvider(config GoogleOAuthConfig) *GoogleOAuthProvider {
	if config.TokenURL == "" {
		config.TokenURL = defaultGoogleTokenURL
	}
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultGoogleTokenInfoURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultGoogleUserInfoURL
	}
	if config.RevokeURL == "" {
		config.RevokeURL = defaultGoogleRevokeURL
	}
	return &GoogleOAuthProvider{
		config: config,
		client: http.DefaultClient,
	}
}

// TokenResponse は認可コード交換の結果。
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenInfo はトークン検証エンドポイントのレスポンス。
// UserIDはトークンが発行されたGoogleユーザーID、
// IssuedToはトークンが発行されたクライアントID。
type TokenInfo struct {
	UserID    string `json:"user_id"`
	IssuedTo  string `json:"issued_to"`
	ExpiresIn int    `json:"expires_in"`
	Error     string `json:"error"`
}

// Profile はユーザー情報エンドポイントのレスポンス。
type Profile struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Email   string `json:"email"`
}

// Exchange は認可コードをアクセストークンとIDトークンに交換する。
func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*TokenResponse, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &tokenResp, nil
}

// VerifyToken はトークン検証エンドポイントでアクセストークンの情報を取得する。
// レスポンスのErrorフィールドの評価は呼び出し側で行う。
func (p *GoogleOAuthProvider) VerifyToken(ctx context.Context, accessToken string) (*TokenInfo, error) {
	reqURL := p.config.TokenInfoURL + "?access_token=" + url.QueryEscape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	// tokeninfoはトークンが無効な場合も200以外を返すことがあるため、
	// ステータスコードではなくボディのerrorフィールドで判定する。
	var info TokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	return &info, nil
}

// FetchProfile はアクセストークンでユーザーのプロフィール情報を取得する。
func (p *GoogleOAuthProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	reqURL := p.config.UserInfoURL + "?" + url.Values{
		"access_token": {accessToken},
		"alt":          {"json"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}

	if profile.Email == "" {
		return nil, fmt.Errorf("empty email in userinfo response")
	}

	return &profile, nil
}

// Revoke はアクセストークンを失効させる。
// Googleの失効エンドポイントは成功時200、失効済み・無効トークンに400を返す。
func (p *GoogleOAuthProvider) Revoke(ctx context.Context, accessToken string) error {
	reqURL := p.config.RevokeURL + "?token=" + url.QueryEscape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke failed with status %d", resp.StatusCode)
	}

	return nil
}

// ExtractSubject はIDトークンからsubクレーム（GoogleユーザーID）を取り出す。
// IDトークンはアクセストークンと同一のHTTPSレスポンスで受領済みのため、
// 署名検証は行わずクレームのみをデコードする。
// subの真正性はトークン検証エンドポイントとの突き合わせで担保される。
func ExtractSubject(idToken string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("failed to parse id token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("id token has no sub claim")
	}

	return sub, nil
}

// compile-time interface check
var _ Provider = (*GoogleOAuthProvider)(nil)
