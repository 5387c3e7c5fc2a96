package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/ssq/internal/models"
	"github.com/woozymasta/ssq/pkg/ssq"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(filepath.Join(t.TempDir(), "ssq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestInsertAndGetSnapshots(t *testing.T) {
	repo := openTestRepo(t)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	online := models.Snapshot{
		QueriedAt:   base.Add(time.Minute),
		Target:      "192.0.2.1:27015",
		Host:        "192.0.2.1",
		IP:          "192.0.2.1",
		Port:        27015,
		CountryCode: "DE",
		Online:      true,
		Latency:     42 * time.Millisecond,
		Info: &ssq.ServerInfo{
			Name: "Test", Map: "de_dust2", Folder: "csgo", Game: "Counter-Strike",
			Version: "1.0", AppID: 730, Players: 3, MaxPlayers: 10, Bots: 1,
			Environment: ssq.EnvironmentLinux,
		},
		Players: []ssq.PlayerInfo{{Name: "a", Score: 2, Duration: 30}},
	}
	offline := models.Snapshot{
		QueriedAt: base,
		Target:    "192.0.2.1:27015",
		Port:      27015,
		Error:     "server unreachable",
	}

	require.NoError(t, repo.InsertSnapshot(offline))
	require.NoError(t, repo.InsertSnapshot(online))
	require.NoError(t, repo.InsertSnapshot(models.Snapshot{QueriedAt: base, Target: "other:1", Port: 1}))

	records, err := repo.GetSnapshots("192.0.2.1:27015", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	newest := records[0]
	assert.True(t, newest.Online)
	assert.Equal(t, "Test", newest.ServerName)
	assert.Equal(t, "Counter-Strike (csgo)", newest.GameName)
	assert.Equal(t, "linux", newest.ServerOS)
	assert.Equal(t, uint32(730), newest.AppID)
	assert.Equal(t, byte(3), newest.PlayerCount)
	assert.Equal(t, int64(42), newest.LatencyMS)
	assert.Equal(t, online.Players, newest.Players)
	assert.True(t, newest.QueriedAt.Equal(online.QueriedAt))

	assert.False(t, records[1].Online)
	assert.Equal(t, "server unreachable", records[1].Error)
	assert.Empty(t, records[1].Players)

	limited, err := repo.GetSnapshots("192.0.2.1:27015", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPruneBefore(t *testing.T) {
	repo := openTestRepo(t)
	now := time.Now().UTC()

	for _, age := range []time.Duration{0, time.Hour, 48 * time.Hour, 72 * time.Hour} {
		require.NoError(t, repo.InsertSnapshot(models.Snapshot{
			QueriedAt: now.Add(-age),
			Target:    "t:1",
			Port:      1,
		}))
	}

	deleted, err := repo.PruneBefore(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	records, err := repo.GetSnapshots("t:1", 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssq.db")

	repo, err := New(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = New(path)
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	var count int
	require.NoError(t, repo.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}
