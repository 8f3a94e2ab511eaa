package adapter

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrIntegerOverflow 结果超出 int64
var ErrIntegerOverflow = errors.New("integer overflow")

// CalculatorAdapter 算术适配器
// 操作数缺失或不是整数时按 0 处理，不报错；结果溢出时报错
type CalculatorAdapter struct{}

// NewCalculatorAdapter 创建算术适配器
func NewCalculatorAdapter() *CalculatorAdapter {
	return &CalculatorAdapter{}
}

// Handle 支持 add
func (c *CalculatorAdapter) Handle(ctx context.Context, action string, params json.RawMessage) (any, error) {
	switch action {
	case "add":
		a, _ := IntParam(params, "a")
		b, _ := IntParam(params, "b")
		return add(a, b)
	default:
		return nil, UnknownAction(action)
	}
}

// add 带溢出检查的加法
func add(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrIntegerOverflow
	}
	return sum, nil
}
