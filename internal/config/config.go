// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/ssq/internal/logger"
	"github.com/woozymasta/ssq/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Query     Query         `group:"Query Options" namespace:"query" env-namespace:"SSQ_QUERY"`
	Server    Server        `group:"HTTP Server Options" namespace:"http" env-namespace:"SSQ_HTTP"`
	Storage   Storage       `group:"Storage Options" namespace:"db" env-namespace:"SSQ_DB"`
	GeoIP     GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"SSQ_GEOIP"`
	RateLimit RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"SSQ_RATE_LIMIT"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"SSQ_LOG"`

	Args struct {
		Targets []string `positional-arg-name:"host[:port]" description:"Servers to query"`
	} `positional-args:"yes"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Query holds Source Query protocol configuration.
type Query struct {
	// betteralign:ignore

	SendTimeout    time.Duration `long:"send-timeout" env:"SEND_TIMEOUT" description:"Request send timeout" default:"3s"`
	ReceiveTimeout time.Duration `long:"receive-timeout" env:"RECEIVE_TIMEOUT" description:"Reply receive timeout" default:"3s"`
	BufferSize     uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Reply datagram buffer size" default:"1400"`
	DefaultPort    int           `long:"default-port" env:"DEFAULT_PORT" description:"Port used when a target has none" default:"27015"`
	Players        bool          `short:"p" long:"players" env:"PLAYERS" description:"Also query the player list"`
	Strict         bool          `long:"strict" env:"STRICT" description:"Fail when a host resolves to more than one address"`
	Workers        int           `short:"w" long:"workers" env:"WORKERS" description:"Concurrent probes" default:"10"`
	Rate           float64       `long:"rate" env:"RATE" description:"Maximum probes started per second (0 disables pacing)" default:"50"`
}

// Server holds HTTP API configuration. An empty address disables the API.
type Server struct {
	// betteralign:ignore

	Address    string `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Serve the HTTP API on this address instead of querying targets"`
	AuthToken  string `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Bearer token required by the HTTP API"`
	TrustProxy bool   `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// Storage holds snapshot history configuration. An empty path disables it.
type Storage struct {
	// betteralign:ignore

	Path       string        `short:"d" long:"path" env:"PATH" description:"Path to SQLite snapshot history"`
	PruneOlder time.Duration `long:"prune-older" env:"PRUNE_OLDER" description:"Delete snapshots older than this duration and exit"`
}

// GeoIP holds MaxMind GeoIP configuration. An empty path disables country lookup.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// RateLimit holds HTTP API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	Count  int           `long:"count" env:"COUNT" description:"Requests allowed per client IP within the window" default:"30"`
	Window time.Duration `long:"window" env:"WINDOW" description:"Rate limit window duration" default:"1m"`
}

// ErrNoWork is returned when neither targets nor an HTTP address were given.
var ErrNoWork = errors.New("no targets given and HTTP API disabled")

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := parse(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print(os.Stdout)
		os.Exit(0)
	}

	return cfg
}

func parse(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Version {
		return &cfg, nil
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.PruneOlder > 0 {
		if c.Storage.Path == "" {
			return errors.New("`--db-prune-older' requires `--db-path'")
		}
		return nil
	}

	if c.Server.Address != "" {
		if c.Server.AuthToken == "" {
			return errors.New("required flag `-t, --http-auth-token' or environment variable `SSQ_HTTP_AUTH_TOKEN' was not specified")
		}
		if c.RateLimit.Count <= 0 || c.RateLimit.Window <= 0 {
			return errors.New("rate limit count and window must be positive")
		}
	} else if len(c.Args.Targets) == 0 {
		return ErrNoWork
	}

	switch {
	case c.Query.Workers <= 0:
		return fmt.Errorf("invalid worker count %d", c.Query.Workers)
	case c.Query.Rate < 0:
		return fmt.Errorf("invalid probe rate %v", c.Query.Rate)
	case c.Query.DefaultPort <= 0 || c.Query.DefaultPort > 65535:
		return fmt.Errorf("invalid default port %d", c.Query.DefaultPort)
	case c.Query.SendTimeout <= 0 || c.Query.ReceiveTimeout <= 0:
		return errors.New("timeouts must be positive")
	}

	return nil
}
