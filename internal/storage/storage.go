// Package storage 定义对象存储端口，启动时按配置选择本地磁盘或 S3 实现
package storage

import (
	"context"
	"io"
	"strings"
	"time"

	"family_hub_server/internal/config"
	"family_hub_server/pkg/errorx"
)

// Storage 对象存储接口
type Storage interface {
	// Put 写入对象，返回可公开访问的 URL
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete 删除对象，对象不存在不视为错误
	Delete(ctx context.Context, key string) error
	// SignedURL 返回带有效期的下载地址，本地存储直接返回公开 URL
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// New 根据 storageConfig.driver 创建存储实现
func New(ctx context.Context, cfg *config.StorageConfig, fallbackBaseURL string) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		baseURL := cfg.PublicBaseURL
		if baseURL == "" {
			baseURL = fallbackBaseURL
		}
		return NewLocalStorage(cfg.LocalPath, baseURL)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unknown storage driver %q", cfg.Driver)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
