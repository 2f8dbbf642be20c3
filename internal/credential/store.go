// Package credential 管理客户端持有的访问令牌
// 令牌缺失或过期均视为未登录
package credential

import (
	"context"
	"sync"
	"time"

	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"
)

// TokenStore 凭证存储接口
// 不同实现只负责存取，令牌有效性由 Token 统一判断
type TokenStore interface {
	// AccessToken 读取访问令牌，不存在时返回空字符串和 nil
	AccessToken(ctx context.Context) (string, error)
	// SetAccessToken 保存访问令牌
	SetAccessToken(ctx context.Context, token string) error
	// Clear 删除访问令牌
	Clear(ctx context.Context) error
}

// Token 读取一个当前可用的访问令牌
// 令牌不存在、无法解析或已过期时返回 ErrAuthMissing
func Token(ctx context.Context, store TokenStore) (string, error) {
	if store == nil {
		return "", errorx.ErrAuthMissing
	}
	token, err := store.AccessToken(ctx)
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeAuthMissing, errorx.ErrAuthMissing.Msg)
	}
	if token == "" || jwt.Expired(token, time.Now()) {
		return "", errorx.ErrAuthMissing
	}
	return token, nil
}

// MemoryStore 进程内凭证存储
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore 创建内存凭证存储，token 可为空
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) AccessToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) SetAccessToken(ctx context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	return m.SetAccessToken(ctx, "")
}

var _ TokenStore = (*MemoryStore)(nil)
