package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedRequest 请求无法解析
var ErrMalformedRequest = errors.New("malformed request")

// Request 表示一次分发请求
type Request struct {
	// ID 可选的关联 ID，原样回填到 Result
	ID      string          `json:"id,omitempty"`
	Adapter string          `json:"adapter"`
	Action  string          `json:"action"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest 创建请求，params 为任意可 JSON 序列化的值
func NewRequest(adapter, action string, params any) (*Request, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	return &Request{
		Adapter: adapter,
		Action:  action,
		Params:  raw,
	}, nil
}

// ParseRequest 解析 JSON 请求
// adapter/action 缺失或类型不对时视为空字符串，params 缺失时为 null
func ParseRequest(payload []byte) (*Request, error) {
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedRequest)
	}

	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedRequest)
	}

	req := &Request{
		ID:      stringField(doc, "id"),
		Adapter: stringField(doc, "adapter"),
		Action:  stringField(doc, "action"),
		Params:  json.RawMessage("null"),
	}

	if params := doc.Get("params"); params.Exists() {
		req.Params = json.RawMessage(params.Raw)
	}

	return req, nil
}

// ParamsOrNull 返回 params，空时返回 null
func (r *Request) ParamsOrNull() json.RawMessage {
	if len(r.Params) == 0 {
		return json.RawMessage("null")
	}
	return r.Params
}

// stringField 读取字符串字段，非字符串返回空
func stringField(doc gjson.Result, key string) string {
	v := doc.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}
