package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"id":"r1","adapter":"calc","action":"add","params":{"a":5,"b":10}}`))
	require.NoError(t, err)

	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, "calc", req.Adapter)
	assert.Equal(t, "add", req.Action)
	assert.JSONEq(t, `{"a":5,"b":10}`, string(req.Params))
}

func TestParseRequest_MissingFieldsDefault(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		adapter string
		action  string
	}{
		{name: "empty object", payload: `{}`},
		{name: "wrong types", payload: `{"adapter":42,"action":["add"]}`},
		{name: "null fields", payload: `{"adapter":null,"action":null}`},
		{name: "only adapter", payload: `{"adapter":"file"}`, adapter: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.adapter, req.Adapter)
			assert.Equal(t, tt.action, req.Action)
			assert.Equal(t, json.RawMessage("null"), req.Params)
		})
	}
}

func TestParseRequest_Malformed(t *testing.T) {
	for _, payload := range []string{``, `{"adapter":`, `[1,2]`, `"calc"`} {
		_, err := ParseRequest([]byte(payload))
		require.ErrorIs(t, err, ErrMalformedRequest, "payload %q", payload)
	}
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("file", "write", map[string]string{"path": "/tmp/x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/tmp/x"}`, string(req.Params))

	_, err = NewRequest("calc", "add", func() {})
	require.Error(t, err)
}

func TestRequest_ParamsOrNull(t *testing.T) {
	req := &Request{Adapter: "calc"}
	assert.Equal(t, json.RawMessage("null"), req.ParamsOrNull())
}
