// Package redis 定义缓存服务接口
// Service 层依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CacheService 缓存服务接口
// 实现有 Redis 和进程内缓存两种
type CacheService interface {
	// Set 设置键值对并指定过期时间，ttl 为 0 表示不过期
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 获取键对应的值（键不存在返回空字符串和 nil）
	Get(ctx context.Context, key string) (string, error)
	// Delete 删除键（不存在的键忽略）
	Delete(ctx context.Context, keys ...string) error
}

// AsyncCacheService 异步缓存服务接口
// 提供异步任务提交能力，用于非阻塞缓存更新
type AsyncCacheService interface {
	CacheService
	// SubmitTask 提交异步缓存任务
	SubmitTask(action func())
	// Close 停止后台 Worker
	Close()
}

// 缓存键前缀
const (
	KeyUserToken         = "user_token:"
	KeyFamilyList        = "family_list:"
	KeyFamilyListVersion = "family_list_ver:"
	familyListVersionTTL = 24 * time.Hour
)

// FamilyListKey 返回用户当前版本的 "我的家庭" 缓存键
// 版本号变化后旧键不再被读取，旧版本下排队的异步写入也就不会生效
func FamilyListKey(ctx context.Context, cache CacheService, userID string) (string, error) {
	version, err := cache.Get(ctx, KeyFamilyListVersion+userID)
	if err != nil {
		return "", err
	}
	return KeyFamilyList + userID + ":" + version, nil
}

// InvalidateFamilyLists 为一批用户更换 "我的家庭" 缓存版本
func InvalidateFamilyLists(ctx context.Context, cache CacheService, userIDs ...string) error {
	for _, id := range userIDs {
		if err := cache.Set(ctx, KeyFamilyListVersion+id, uuid.NewString(), familyListVersionTTL); err != nil {
			return err
		}
	}
	return nil
}
