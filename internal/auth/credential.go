package auth

import (
	"encoding/json"
	"fmt"
	"time"
)

// Credential はIdPから発行されたクレデンシャルを表す値型。
// セッションにはEncodeCredentialでシリアライズしたblobとして保存され、
// 失効時にDecodeCredentialで復元される。
type Credential struct {
	AccessToken string    `json:"access_token"`
	SubjectID   string    `json:"subject_id"`
	Expiry      time.Time `json:"expiry"`
}

// EncodeCredential はCredentialをセッション保存用のblobにシリアライズする。
func EncodeCredential(c Credential) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode credential: %w", err)
	}
	return string(b), nil
}

// DecodeCredential はセッションに保存されたblobからCredentialを復元する。
func DecodeCredential(blob string) (Credential, error) {
	var c Credential
	if err := json.Unmarshal([]byte(blob), &c); err != nil {
		return Credential{}, fmt.Errorf("failed to decode credential: %w", err)
	}
	if c.AccessToken == "" {
		return Credential{}, fmt.Errorf("credential has empty access token")
	}
	return c, nil
}
