package model

import (
	"encoding/json"

	"github.com/tidwall/sjson"
)

// 结果状态常量
const (
	STATUS_SUCCESS = "success"
	STATUS_ERROR   = "error"
)

// Result 分发结果，Success 或 Error 二选一
type Result struct {
	ID      string
	Status  string
	Data    any
	Message string
}

// Success 创建成功结果
func Success(data any) Result {
	return Result{Status: STATUS_SUCCESS, Data: data}
}

// Failure 创建错误结果
func Failure(message string) Result {
	return Result{Status: STATUS_ERROR, Message: message}
}

// IsSuccess 是否为成功结果
func (r Result) IsSuccess() bool {
	return r.Status == STATUS_SUCCESS
}

// WithID 返回带关联 ID 的副本
func (r Result) WithID(id string) Result {
	r.ID = id
	return r
}

// MarshalJSON 编码为
// {"status":"success","data":...} 或 {"status":"error","message":"..."}
func (r Result) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error

	if r.ID != "" {
		if out, err = sjson.SetBytes(out, "id", r.ID); err != nil {
			return nil, err
		}
	}

	if r.IsSuccess() {
		if out, err = sjson.SetBytes(out, "status", STATUS_SUCCESS); err != nil {
			return nil, err
		}
		if raw, ok := r.Data.(json.RawMessage); ok && len(raw) > 0 {
			return sjson.SetRawBytes(out, "data", raw)
		}
		return sjson.SetBytes(out, "data", r.Data)
	}

	if out, err = sjson.SetBytes(out, "status", STATUS_ERROR); err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, "message", r.Message)
}
