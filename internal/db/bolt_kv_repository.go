package db

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Bucket 名称
const (
	BUCKET_KV = "kv"
)

// BoltKVRepository bbolt 实现的 KVRepository
type BoltKVRepository struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// NewBoltKVRepository 创建 BoltKVRepository
func NewBoltKVRepository(db *bbolt.DB, logger *zap.Logger) *BoltKVRepository {
	repo := &BoltKVRepository{
		db:     db,
		logger: logger,
	}

	if err := repo.initBucket(); err != nil {
		logger.Error("failed to initialize bucket", zap.Error(err))
	}

	return repo
}

// initBucket 初始化 bucket
func (r *BoltKVRepository) initBucket() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BUCKET_KV))
		return err
	})
}

// Put 保存或覆盖 key
func (r *BoltKVRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_KV))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(key), value)
	})
}

// Get 读取 key
func (r *BoltKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_KV))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data := b.Get([]byte(key))
		if data == nil {
			return &ErrKeyNotFound{Key: key}
		}

		// bbolt 返回的切片只在事务内有效
		value = append([]byte(nil), data...)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Delete 删除 key
func (r *BoltKVRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_KV))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		if b.Get([]byte(key)) == nil {
			return &ErrKeyNotFound{Key: key}
		}

		return b.Delete([]byte(key))
	})
}

// Keys 按字典序列出所有 key
func (r *BoltKVRepository) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := []string{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_KV))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		// bbolt 游标按字节序遍历
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return keys, nil
}

// InitializeDB 初始化数据库
func InitializeDB(dbPath string, logger *zap.Logger) (*bbolt.DB, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BUCKET_KV))
		return err
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Info("database initialized", zap.String("path", dbPath))
	return db, nil
}
