package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_MarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "success integer",
			result: Success(int64(15)),
			want:   `{"status":"success","data":15}`,
		},
		{
			name:   "success zero is kept",
			result: Success(int64(0)),
			want:   `{"status":"success","data":0}`,
		},
		{
			name:   "success raw json",
			result: Success(json.RawMessage(`{"ok":true}`)),
			want:   `{"status":"success","data":{"ok":true}}`,
		},
		{
			name:   "success nil",
			result: Success(nil),
			want:   `{"status":"success","data":null}`,
		},
		{
			name:   "error",
			result: Failure("unknown action: subtract"),
			want:   `{"status":"error","message":"unknown action: subtract"}`,
		},
		{
			name:   "with id",
			result: Success("File written").WithID("r1"),
			want:   `{"id":"r1","status":"success","data":"File written"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.result)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestResult_IsSuccess(t *testing.T) {
	assert.True(t, Success(1).IsSuccess())
	assert.False(t, Failure("boom").IsSuccess())
}
