package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigOverlaysDefaults(t *testing.T) {
	cfg, err := DecodeConfig(`
name = "bench-link"
send_queue = 8
idle_delay = "5ms"
`)
	require.NoError(t, err)

	want := DefaultConfig()
	want.Name = "bench-link"
	want.SendQueue = 8
	want.IdleDelay = 5 * time.Millisecond
	assert.Equal(t, want, cfg)
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"BadDuration", `idle_delay = "soon"`},
		{"UnknownKey", `buffer = 12`},
		{"ZeroBuffer", `buffer_size = 0`},
		{"NegativeBatch", `write_batch = -1`},
		{"Syntax", `name = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("read_queue = 2\nwrite_batch = 1\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.ReadQueue)
	assert.Equal(t, 1, cfg.WriteBatch)
	assert.Equal(t, DefaultConfig().BufferSize, cfg.BufferSize)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 128, cfg.BufferSize)
	assert.Equal(t, 3, cfg.WriteBatch)
	assert.Equal(t, time.Millisecond, cfg.IdleDelay)
}
