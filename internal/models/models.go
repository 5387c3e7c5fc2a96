// Package models defines the data structures shared by the probe, the HTTP API and storage.
package models

import (
	"time"

	"github.com/woozymasta/ssq/pkg/ssq"
)

// Target is a parsed host[:port] pair.
type Target struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Snapshot is the outcome of probing one target once.
type Snapshot struct {
	QueriedAt   time.Time        `json:"queried_at"`
	Info        *ssq.ServerInfo  `json:"info,omitempty"`
	Target      string           `json:"target"`
	Host        string           `json:"host"`
	IP          string           `json:"ip,omitempty"`
	CountryCode string           `json:"country_code,omitempty"`
	Error       string           `json:"error,omitempty"`
	Players     []ssq.PlayerInfo `json:"players,omitempty"`
	Port        int              `json:"port"`
	Latency     time.Duration    `json:"latency_ns"`
	Online      bool             `json:"online"`
}

// Record is a stored snapshot row. It keeps the summary columns of a Snapshot
// plus the player list, without the full info record.
type Record struct {
	QueriedAt   time.Time        `json:"queried_at"`
	Target      string           `json:"target"`
	IP          string           `json:"ip"`
	CountryCode string           `json:"country_code"`
	Error       string           `json:"error,omitempty"`
	ServerName  string           `json:"server_name"`
	MapName     string           `json:"map_name"`
	GameName    string           `json:"game_name"`
	GameVersion string           `json:"game_version"`
	ServerOS    string           `json:"server_os"`
	Players     []ssq.PlayerInfo `json:"players,omitempty"`
	ID          int64            `json:"id"`
	LatencyMS   int64            `json:"latency_ms"`
	Port        int              `json:"port"`
	AppID       uint32           `json:"app_id"`
	PlayerCount byte             `json:"player_count"`
	MaxPlayers  byte             `json:"max_players"`
	Bots        byte             `json:"bots"`
	Online      bool             `json:"online"`
}
