package session

import (
	"fmt"
	"sync"
	"time"
)

// StoreConfig はセッションストアの設定。
type StoreConfig struct {
	MaxAge          time.Duration // セッション有効期間
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultStoreConfig はデフォルトのストア設定を返す。
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxAge:          24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

// Store はインメモリのセッションストア。
// 期限切れエントリはバックグラウンドで定期的に削除される。
type Store struct {
	config StoreConfig

	mu       sync.RWMutex
	sessions map[string]Session

	stopCh chan struct{}
}

// NewStore は新しいStoreを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewStore(config StoreConfig) *Store {
	s := &Store{
		config:   config,
		sessions: make(map[string]Session),
		stopCh:   make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (s *Store) Stop() {
	close(s.stopCh)
}

// Create は新しい匿名セッションを作成して返す。
func (s *Store) Create() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	sess := Session{
		ID:        id,
		ExpiresAt: now.Add(s.config.MaxAge),
		CreatedAt: now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return &sess, nil
}

// Get は指定IDのセッションのコピーを返す。
// 存在しないか期限切れの場合はnilを返す。
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(sess.ExpiresAt) {
		return nil
	}

	copied := sess
	copied.Flashes = append([]string(nil), sess.Flashes...)
	return &copied
}

// Save はセッションの変更をストアに書き戻す。
// 存在しないセッションの保存はエラーを返す。
func (s *Store) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return fmt.Errorf("session not found: %s", sess.ID)
	}
	s.sessions[sess.ID] = *sess
	return nil
}

// Delete は指定IDのセッションを削除する。
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Count は現在保持しているセッション数を返す。テストおよびメトリクス用。
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup は期限切れセッションを削除する。
func (s *Store) cleanup() {
	now := time.Now()

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}
