package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Adapter 能力适配器接口
// 实现需要支持并发调用
type Adapter interface {
	// Handle 执行 action
	// params: 原始 JSON 参数，由适配器自行校验
	Handle(ctx context.Context, action string, params json.RawMessage) (any, error)
}

// Func 函数形式的适配器
type Func func(ctx context.Context, action string, params json.RawMessage) (any, error)

// Handle 调用函数本身
func (f Func) Handle(ctx context.Context, action string, params json.RawMessage) (any, error) {
	return f(ctx, action, params)
}

// ErrUnknownAction 适配器不支持该 action
var ErrUnknownAction = errors.New("unknown action")

// UnknownAction 返回包装了 ErrUnknownAction 的错误
func UnknownAction(action string) error {
	return fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

// ErrMissingParam 缺少必需参数
type ErrMissingParam struct {
	Name string
}

func (e *ErrMissingParam) Error() string {
	return "missing " + e.Name
}

// Param 读取参数
func Param(params json.RawMessage, key string) gjson.Result {
	return gjson.GetBytes(params, key)
}

// StringParam 读取字符串参数
func StringParam(params json.RawMessage, key string) (string, bool) {
	v := Param(params, key)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// RequireString 读取必需的字符串参数
func RequireString(params json.RawMessage, key string) (string, error) {
	v, ok := StringParam(params, key)
	if !ok {
		return "", &ErrMissingParam{Name: key}
	}
	return v, nil
}

// IntParam 读取整数参数，小数或超出 int64 的数字视为无效
func IntParam(params json.RawMessage, key string) (int64, bool) {
	v := Param(params, key)
	if v.Type != gjson.Number {
		return 0, false
	}

	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
