package cache

import (
	"context"
	"time"
)

// Store 键值缓存，ttl<=0 表示不过期
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// SetNX 仅在 key 不存在时写入，返回是否写入成功
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Take 读取并删除 key（一次性令牌）
	Take(ctx context.Context, key string) (value []byte, found bool, err error)
	// DeletePrefix 删除所有以 prefix 开头的 key，返回删除数量
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// New 根据类型创建缓存，未知类型回退到内存缓存
func New(cacheType, addr, password string, db int) Store {
	switch cacheType {
	case "redis":
		return NewRedisStore(addr, password, db)
	default:
		return NewMemoryStore()
	}
}
