// Package redis 提供基于 Redis 的凭证存储
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"strconv"

	"kama_group_client/internal/config"
	"kama_group_client/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// NewClient 按配置创建 Redis 客户端并检查连通性
func NewClient(ctx context.Context, conf config.RedisConfig) (*redis.Client, error) {
	// 拼接地址：host:port
	addr := conf.Host + ":" + strconv.Itoa(conf.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.Password,
		DB:       conf.Db,
		PoolSize: 4, // 客户端进程只有少量并发读写
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis ping %s", addr)
	}
	return client, nil
}
