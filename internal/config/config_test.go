package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse([]string{"127.0.0.1:27015", "example.org"})
	require.NoError(t, err)

	assert.Equal(t, []string{"127.0.0.1:27015", "example.org"}, cfg.Args.Targets)
	assert.Equal(t, 3*time.Second, cfg.Query.SendTimeout)
	assert.Equal(t, 3*time.Second, cfg.Query.ReceiveTimeout)
	assert.Equal(t, uint16(1400), cfg.Query.BufferSize)
	assert.Equal(t, 27015, cfg.Query.DefaultPort)
	assert.Equal(t, 10, cfg.Query.Workers)
	assert.False(t, cfg.Query.Players)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Empty(t, cfg.Storage.Path)
}

func TestParseNamespacedFlags(t *testing.T) {
	cfg, err := parse([]string{
		"--query-players", "--query-receive-timeout=500ms", "--db-path=history.db",
		"--log-format=json", "10.0.0.1",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Query.Players)
	assert.Equal(t, 500*time.Millisecond, cfg.Query.ReceiveTimeout)
	assert.Equal(t, "history.db", cfg.Storage.Path)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SSQ_QUERY_WORKERS", "3")
	t.Setenv("SSQ_HTTP_LISTEN_ADDRESS", ":8080")
	t.Setenv("SSQ_HTTP_AUTH_TOKEN", "secret")

	cfg, err := parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Query.Workers)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "secret", cfg.Server.AuthToken)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"nothing to do", nil},
		{"serve without token", []string{"--http-address=:8080"}},
		{"prune without db", []string{"--db-prune-older=24h"}},
		{"bad workers", []string{"--query-workers=0", "host"}},
		{"bad port", []string{"--query-default-port=70000", "host"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.args)
			require.Error(t, err)
		})
	}

	_, err := parse(nil)
	require.ErrorIs(t, err, ErrNoWork)
}

func TestParsePruneOnly(t *testing.T) {
	cfg, err := parse([]string{"--db-path=h.db", "--db-prune-older=72h"})
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, cfg.Storage.PruneOlder)
}
