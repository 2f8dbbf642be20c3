package redis

import (
	"context"
	"errors"
	"time"

	"kama_group_client/internal/credential"
	"kama_group_client/pkg/constants"
	"kama_group_client/pkg/errorx"
	"kama_group_client/pkg/util/jwt"

	"github.com/redis/go-redis/v9"
)

// TokenStore 以 Redis 作为键值存储的凭证存储
// 多个客户端进程共享同一个 key 时可以复用同一份登录态
type TokenStore struct {
	client *redis.Client
	key    string
}

// NewTokenStore 创建 Redis 凭证存储，key 为 prefix + "accessToken"
func NewTokenStore(client *redis.Client, prefix string) *TokenStore {
	return &TokenStore{
		client: client,
		key:    prefix + constants.ACCESS_TOKEN_KEY,
	}
}

// AccessToken 读取访问令牌（键不存在返回空字符串和 nil）
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", s.key)
	}
	return value, nil
}

// SetAccessToken 保存访问令牌，过期时间与令牌的 exp 一致
func (s *TokenStore) SetAccessToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, ttlOf(token, time.Now())).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", s.key)
	}
	return nil
}

// Clear 删除访问令牌
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Unlink(ctx, s.key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", s.key)
	}
	return nil
}

// ttlOf 根据令牌 exp 计算 key 的存活时间，没有 exp 时不过期（返回 0）
func ttlOf(token string, now time.Time) time.Duration {
	claims, err := jwt.ParseUnverified(token)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	ttl := claims.ExpiresAt.Time.Sub(now)
	if ttl <= 0 {
		// 已过期的令牌仍写入，读取方会按过期处理
		return time.Second
	}
	return ttl
}

// 确保 TokenStore 实现了 credential.TokenStore 接口
var _ credential.TokenStore = (*TokenStore)(nil)
