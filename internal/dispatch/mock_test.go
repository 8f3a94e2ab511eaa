package dispatch

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// mockAdapter testify mock 实现的 Adapter
type mockAdapter struct {
	mock.Mock
}

func (m *mockAdapter) Handle(ctx context.Context, action string, params json.RawMessage) (any, error) {
	args := m.Called(ctx, action, params)
	return args.Get(0), args.Error(1)
}
