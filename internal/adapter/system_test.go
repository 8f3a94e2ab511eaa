package adapter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemAdapter_Hostname(t *testing.T) {
	want, err := os.Hostname()
	require.NoError(t, err)

	got, err := NewSystemAdapter().Handle(context.Background(), "hostname", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSystemAdapter_Uptime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uptime")
	require.NoError(t, os.WriteFile(path, []byte("12345.67 98765.43\n"), 0644))

	s := &SystemAdapter{uptimePath: path}
	got, err := s.Handle(context.Background(), "uptime", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12346), got)
}

func TestSystemAdapter_UptimeErrors(t *testing.T) {
	dir := t.TempDir()

	s := &SystemAdapter{uptimePath: filepath.Join(dir, "missing")}
	_, err := s.Handle(context.Background(), "uptime", nil)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	s.uptimePath = empty
	_, err = s.Handle(context.Background(), "uptime", nil)
	require.EqualError(t, err, "empty uptime file")
}

func TestSystemAdapter_UnknownInterface(t *testing.T) {
	_, err := NewSystemAdapter().Handle(context.Background(), "ip", json.RawMessage(`{"interface":"does-not-exist0"}`))
	require.Error(t, err)
}

func TestSystemAdapter_UnknownAction(t *testing.T) {
	_, err := NewSystemAdapter().Handle(context.Background(), "reboot", nil)
	require.ErrorIs(t, err, ErrUnknownAction)
}
