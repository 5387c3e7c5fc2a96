// Package storage keeps a history of probe snapshots in SQLite.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/woozymasta/ssq/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

// DefaultHistoryLimit caps GetSnapshots when no limit is given.
const DefaultHistoryLimit = 100

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New initializes a new SQLite connection, sets connection pool parameters, and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// InsertSnapshot appends one snapshot to the history.
func (r *Repository) InsertSnapshot(s models.Snapshot) error {
	rec := toRecord(s)

	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}

	_, err = r.db.Exec(`
	INSERT INTO snapshots (
		target, ip, port, country_code, online, error, latency_ms,
		server_name, map_name, game_name, game_version, server_os,
		app_id, players, max_players, bots, player_list, queried_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Target, rec.IP, rec.Port, rec.CountryCode, rec.Online, rec.Error, rec.LatencyMS,
		rec.ServerName, rec.MapName, rec.GameName, rec.GameVersion, rec.ServerOS,
		rec.AppID, rec.PlayerCount, rec.MaxPlayers, rec.Bots, string(players), rec.QueriedAt,
	)

	return err
}

// GetSnapshots returns the newest snapshots of target, newest first.
// A non-positive limit means DefaultHistoryLimit.
func (r *Repository) GetSnapshots(target string, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.db.Query(`
		SELECT id, target, ip, port, country_code, online, error, latency_ms,
		       server_name, map_name, game_name, game_version, server_os,
		       app_id, players, max_players, bots, player_list, queried_at
		FROM snapshots
		WHERE target = ?
		ORDER BY queried_at DESC, id DESC
		LIMIT ?
	`, target, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []models.Record
	for rows.Next() {
		var (
			rec     models.Record
			players string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Target, &rec.IP, &rec.Port, &rec.CountryCode, &rec.Online, &rec.Error, &rec.LatencyMS,
			&rec.ServerName, &rec.MapName, &rec.GameName, &rec.GameVersion, &rec.ServerOS,
			&rec.AppID, &rec.PlayerCount, &rec.MaxPlayers, &rec.Bots, &players, &rec.QueriedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(players), &rec.Players); err != nil {
			return nil, fmt.Errorf("decode players of snapshot %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// PruneBefore deletes snapshots taken before t and returns how many were removed.
func (r *Repository) PruneBefore(t time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM snapshots WHERE queried_at < ?`, t.UTC())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// toRecord flattens a snapshot into its stored columns.
func toRecord(s models.Snapshot) models.Record {
	rec := models.Record{
		QueriedAt:   s.QueriedAt.UTC(),
		Target:      s.Target,
		IP:          s.IP,
		Port:        s.Port,
		CountryCode: s.CountryCode,
		Online:      s.Online,
		Error:       s.Error,
		LatencyMS:   s.Latency.Milliseconds(),
		Players:     s.Players,
	}

	if info := s.Info; info != nil {
		rec.ServerName = info.Name
		rec.MapName = info.Map
		rec.GameName = info.GameLabel()
		rec.GameVersion = info.Version
		rec.ServerOS = info.Environment.String()
		rec.AppID = info.GameAppID()
		rec.PlayerCount = info.Players
		rec.MaxPlayers = info.MaxPlayers
		rec.Bots = info.Bots
	}

	return rec
}
