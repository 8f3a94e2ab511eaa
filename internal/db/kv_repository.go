package db

import (
	"context"
)

// KVRepository 定义键值存储接口
type KVRepository interface {
	// Put 保存或覆盖 key
	Put(ctx context.Context, key string, value []byte) error

	// Get 读取 key
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete 删除 key
	Delete(ctx context.Context, key string) error

	// Keys 按字典序列出所有 key
	Keys(ctx context.Context) ([]string, error)
}

// ErrKeyNotFound key 不存在错误
type ErrKeyNotFound struct {
	Key string
}

func (e *ErrKeyNotFound) Error() string {
	return "key not found: " + e.Key
}
