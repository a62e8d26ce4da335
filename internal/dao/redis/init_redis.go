// Package redis 提供缓存服务的初始化
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"strconv"
	"time"

	"family_hub_server/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	workerNum    = 8
	taskChanSize = 1000
)

// Init 根据配置创建缓存服务
// 未配置 Host 或连接失败时退化为进程内缓存
func Init(cfg *config.RedisConfig) AsyncCacheService {
	if cfg == nil || cfg.Host == "" {
		zap.L().Info("redis not configured, using in-process cache")
		return NewLocalCache(workerNum, taskChanSize)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.Db,
		PoolSize:     50,
		MinIdleConns: workerNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unreachable, using in-process cache", zap.String("addr", client.Options().Addr), zap.Error(err))
		_ = client.Close()
		return NewLocalCache(workerNum, taskChanSize)
	}

	zap.L().Info("redis connected", zap.String("addr", client.Options().Addr))
	return NewRedisCache(client, workerNum, taskChanSize)
}
