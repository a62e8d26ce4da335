package redis

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	value    string
	expireAt time.Time
}

// LocalCache 进程内缓存，未配置 Redis 或 Redis 不可达时使用
// 只适合单实例部署
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]localEntry
	pool    *taskPool
	now     func() time.Time
}

// NewLocalCache 创建进程内缓存
func NewLocalCache(workerNum, taskChanSize int) *LocalCache {
	return &LocalCache{
		entries: make(map[string]localEntry),
		pool:    newTaskPool(workerNum, taskChanSize),
		now:     time.Now,
	}
}

func (l *LocalCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	entry := localEntry{value: value}
	if ttl > 0 {
		entry.expireAt = l.now().Add(ttl)
	}
	l.mu.Lock()
	l.entries[key] = entry
	l.mu.Unlock()
	return nil
}

func (l *LocalCache) Get(_ context.Context, key string) (string, error) {
	l.mu.RLock()
	entry, ok := l.entries[key]
	l.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if !entry.expireAt.IsZero() && !l.now().Before(entry.expireAt) {
		l.mu.Lock()
		delete(l.entries, key)
		l.mu.Unlock()
		return "", nil
	}
	return entry.value, nil
}

func (l *LocalCache) Delete(_ context.Context, keys ...string) error {
	l.mu.Lock()
	for _, key := range keys {
		delete(l.entries, key)
	}
	l.mu.Unlock()
	return nil
}

func (l *LocalCache) SubmitTask(action func()) {
	l.pool.submit(action)
}

func (l *LocalCache) Close() {
	l.pool.close()
}

var _ AsyncCacheService = (*LocalCache)(nil)
