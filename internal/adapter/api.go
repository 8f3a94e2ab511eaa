package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// APIAdapter HTTP 适配器
type APIAdapter struct {
	client *resty.Client
}

// NewAPIAdapter 创建 HTTP 适配器
func NewAPIAdapter(timeout time.Duration) *APIAdapter {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &APIAdapter{client: client}
}

// Handle 支持 get
func (a *APIAdapter) Handle(ctx context.Context, action string, params json.RawMessage) (any, error) {
	switch action {
	case "get":
		return a.get(ctx, params)
	default:
		return nil, UnknownAction(action)
	}
}

// get 请求 url 并返回解析后的 JSON
func (a *APIAdapter) get(ctx context.Context, params json.RawMessage) (any, error) {
	url, err := RequireString(params, "url")
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, &ErrMissingParam{Name: "url"}
	}

	resp, err := a.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response is not valid JSON")
	}

	return json.RawMessage(body), nil
}
