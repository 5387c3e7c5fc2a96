package ssq

import (
	"strings"
	"time"

	"github.com/leighmacdonald/steamid/v4/steamid"
)

// ServerType is the dedicated-server kind reported by A2S_INFO.
type ServerType byte

// Server kinds.
const (
	ServerTypeUnknown ServerType = iota
	ServerTypeListen
	ServerTypeDedicated
	ServerTypeSourceTV
)

func (t ServerType) String() string {
	switch t {
	case ServerTypeListen:
		return "listen"
	case ServerTypeDedicated:
		return "dedicated"
	case ServerTypeSourceTV:
		return "sourcetv"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON output.
func (t ServerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText; anything else is unknown.
func (t *ServerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "listen":
		*t = ServerTypeListen
	case "dedicated":
		*t = ServerTypeDedicated
	case "sourcetv":
		*t = ServerTypeSourceTV
	default:
		*t = ServerTypeUnknown
	}
	return nil
}

// Environment is the operating system a server runs on.
type Environment byte

// Operating systems.
const (
	EnvironmentUnknown Environment = iota
	EnvironmentWindows
	EnvironmentLinux
)

func (e Environment) String() string {
	switch e {
	case EnvironmentWindows:
		return "windows"
	case EnvironmentLinux:
		return "linux"
	default:
		return "unknown"
	}
}

// MarshalText renders the environment by name in JSON output.
func (e Environment) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Environment) UnmarshalText(text []byte) error {
	switch string(text) {
	case "windows":
		*e = EnvironmentWindows
	case "linux":
		*e = EnvironmentLinux
	default:
		*e = EnvironmentUnknown
	}
	return nil
}

// ExtraDataFlag is the bitmask read after the version string.
type ExtraDataFlag byte

// Extra data bits, listed in the order their fields appear on the wire.
const (
	EDFPort     ExtraDataFlag = 0x80
	EDFSteamID  ExtraDataFlag = 0x10
	EDFSourceTV ExtraDataFlag = 0x40
	EDFKeywords ExtraDataFlag = 0x20
	EDFGameID   ExtraDataFlag = 0x01

	edfKnown = EDFPort | EDFSteamID | EDFSourceTV | EDFKeywords | EDFGameID
)

// Has reports whether every bit of f is set.
func (e ExtraDataFlag) Has(f ExtraDataFlag) bool {
	return e&f == f
}

// ServerInfo is a decoded A2S_INFO reply.
type ServerInfo struct {
	// Extra is nil unless the reply carried a flags byte with at least one known bit.
	Extra *ExtraData `json:"extra,omitempty"`

	Name    string `json:"name"`
	Map     string `json:"map"`
	Folder  string `json:"folder"`
	Game    string `json:"game"`
	Version string `json:"version"`

	AppID uint16 `json:"app_id"`

	Protocol    byte        `json:"protocol"`
	Players     uint8       `json:"players"`
	MaxPlayers  uint8       `json:"max_players"`
	Bots        uint8       `json:"bots"`
	ServerType  ServerType  `json:"server_type"`
	Environment Environment `json:"environment"`
	Password    bool        `json:"password"`
	VAC         bool        `json:"vac"`
}

// GameLabel returns the friendly game name followed by the game directory,
// e.g. "Team Fortress (tf)".
func (s *ServerInfo) GameLabel() string {
	return s.Game + " (" + s.Folder + ")"
}

// GameAppID returns the Steam application id. When the reply carried a 64-bit
// game id its low 24 bits take precedence over the 16-bit app id.
func (s *ServerInfo) GameAppID() uint32 {
	if s.Extra != nil && s.Extra.Flags.Has(EDFGameID) {
		return uint32(s.Extra.GameID & 0xFFFFFF)
	}

	return uint32(s.AppID)
}

// ExtraData holds the optional trailing fields of an A2S_INFO reply.
// Fields whose bit is not set in Flags stay at their zero value.
type ExtraData struct {
	SourceTV *SourceTV `json:"sourcetv,omitempty"`
	Keywords string    `json:"keywords,omitempty"`

	SteamID uint64 `json:"steam_id,omitempty"`
	GameID  uint64 `json:"game_id,omitempty"`

	Port  uint16        `json:"port,omitempty"`
	Flags ExtraDataFlag `json:"flags"`
}

// SourceTV describes the spectator relay advertised by a server.
type SourceTV struct {
	Name string `json:"name"`
	Port uint16 `json:"port"`
}

// Tags splits the keywords string on commas, dropping empty entries.
func (e *ExtraData) Tags() []string {
	if e.Keywords == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(e.Keywords, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// ServerSteamID returns the server SteamID, or an invalid id when the reply did not carry one.
func (e *ExtraData) ServerSteamID() steamid.SteamID {
	if !e.Flags.Has(EDFSteamID) {
		return steamid.SteamID{}
	}

	return steamid.New(int64(e.SteamID))
}

// PlayerInfo is one row of an A2S_PLAYER reply.
type PlayerInfo struct {
	Name string `json:"name"`

	// Duration is the time connected, in seconds.
	Duration float32 `json:"duration"`
	Score    int32   `json:"score"`

	// Index is reported as 0 by many games; that is not an error.
	Index byte `json:"index"`
}

// Connected returns the time the player has been connected.
func (p PlayerInfo) Connected() time.Duration {
	return time.Duration(float64(p.Duration) * float64(time.Second))
}
