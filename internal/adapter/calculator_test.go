package adapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorAdapter_Add(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   int64
	}{
		{name: "both operands", params: `{"a":5,"b":10}`, want: 15},
		{name: "missing b", params: `{"a":5}`, want: 5},
		{name: "non numeric", params: `{"a":"5","b":2}`, want: 2},
		{name: "fractional", params: `{"a":1.5,"b":2}`, want: 2},
		{name: "null params", params: `null`, want: 0},
		{name: "negative", params: `{"a":-4,"b":1}`, want: -3},
	}

	c := NewCalculatorAdapter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Handle(context.Background(), "add", json.RawMessage(tt.params))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculatorAdapter_UnknownAction(t *testing.T) {
	_, err := NewCalculatorAdapter().Handle(context.Background(), "subtract", json.RawMessage(`{"a":1,"b":2}`))
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestCalculatorAdapter_Overflow(t *testing.T) {
	c := NewCalculatorAdapter()

	for _, params := range []string{
		`{"a":9223372036854775807,"b":1}`,
		`{"a":-9223372036854775808,"b":-1}`,
	} {
		_, err := c.Handle(context.Background(), "add", json.RawMessage(params))
		require.ErrorIs(t, err, ErrIntegerOverflow, params)
	}

	got, err := c.Handle(context.Background(), "add", json.RawMessage(`{"a":9223372036854775806,"b":1}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), got)
}
