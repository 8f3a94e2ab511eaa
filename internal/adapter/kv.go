package adapter

import (
	"context"
	"encoding/json"

	"github.com/lucheng0127/adapterhub/internal/db"
)

// KV_OK put/delete 成功时的返回值
const KV_OK = "OK"

// KVAdapter 键值存储适配器
type KVAdapter struct {
	repo db.KVRepository
}

// NewKVAdapter 创建键值存储适配器
func NewKVAdapter(repo db.KVRepository) *KVAdapter {
	return &KVAdapter{repo: repo}
}

// Handle 支持 put / get / delete / list
func (k *KVAdapter) Handle(ctx context.Context, action string, params json.RawMessage) (any, error) {
	switch action {
	case "put":
		key, err := requireKey(params)
		if err != nil {
			return nil, err
		}

		value := Param(params, "value")
		if !value.Exists() {
			return nil, &ErrMissingParam{Name: "value"}
		}

		if err := k.repo.Put(ctx, key, []byte(value.Raw)); err != nil {
			return nil, err
		}
		return KV_OK, nil

	case "get":
		key, err := requireKey(params)
		if err != nil {
			return nil, err
		}

		value, err := k.repo.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(value), nil

	case "delete":
		key, err := requireKey(params)
		if err != nil {
			return nil, err
		}

		if err := k.repo.Delete(ctx, key); err != nil {
			return nil, err
		}
		return KV_OK, nil

	case "list":
		return k.repo.Keys(ctx)

	default:
		return nil, UnknownAction(action)
	}
}

// requireKey 读取非空 key
func requireKey(params json.RawMessage) (string, error) {
	key, err := RequireString(params, "key")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", &ErrMissingParam{Name: "key"}
	}
	return key, nil
}
