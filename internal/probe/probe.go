// Package probe queries game servers with the A2S protocol and turns the
// outcome into snapshots, one target at a time or in batches.
package probe

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/ssq/internal/config"
	"github.com/woozymasta/ssq/internal/geoip"
	"github.com/woozymasta/ssq/internal/models"
	"github.com/woozymasta/ssq/pkg/ssq"
)

// Prober runs A2S queries configured by config.Query.
type Prober struct {
	client  *ssq.Client
	geo     *geoip.Provider
	now     func() time.Time
	options config.Query
}

// New creates a Prober. geo may be nil to disable country lookup.
func New(options config.Query, geo *geoip.Provider) *Prober {
	transport := ssq.NewUDPTransport()
	transport.SendTimeout = options.SendTimeout
	transport.ReceiveTimeout = options.ReceiveTimeout
	transport.BufferSize = options.BufferSize

	client := ssq.New()
	client.Transport = transport
	client.Strict = options.Strict
	client.Logger = log.Logger.With().Str("component", "ssq").Logger()

	return &Prober{
		client:  client,
		geo:     geo,
		options: options,
		now:     time.Now,
	}
}

// Client returns the underlying A2S client.
func (p *Prober) Client() *ssq.Client {
	return p.client
}

// ParseTarget splits "host[:port]" using defaultPort when the port is omitted.
// IPv6 literals must be bracketed when a port is given.
func ParseTarget(s string, defaultPort int) (models.Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Target{}, fmt.Errorf("empty target")
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// no port part
		return models.Target{Host: strings.Trim(s, "[]"), Port: defaultPort}, nil
	}
	if host == "" {
		return models.Target{}, fmt.Errorf("target %q has no host", s)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return models.Target{}, fmt.Errorf("target %q has invalid port", s)
	}

	return models.Target{Host: host, Port: port}, nil
}

// Probe resolves target, queries its info and, when enabled, its players.
// Failures are recorded in the snapshot rather than returned.
func (p *Prober) Probe(target models.Target) models.Snapshot {
	snap := models.Snapshot{
		QueriedAt: p.now().UTC(),
		Target:    net.JoinHostPort(target.Host, strconv.Itoa(target.Port)),
		Host:      target.Host,
		Port:      target.Port,
	}

	logCtx := log.With().Str("target", snap.Target).Logger()

	endpoint, err := p.resolve(target)
	if err != nil {
		snap.Error = err.Error()
		logCtx.Debug().Err(err).Msg("Target resolution failed")
		return snap
	}
	snap.IP = endpoint.IP.String()
	snap.CountryCode = p.geo.CountryCode(endpoint.IP)

	start := time.Now()
	info, err := p.client.GetServerInfo(endpoint)
	snap.Latency = time.Since(start)
	if err != nil {
		snap.Error = err.Error()
		logCtx.Debug().Err(err).Msg("A2S info query failed")
		return snap
	}
	snap.Info = info
	snap.Online = true

	if p.options.Players {
		players, err := p.client.GetPlayers(endpoint)
		if err != nil {
			snap.Error = err.Error()
			logCtx.Debug().Err(err).Msg("A2S player query failed")
		}
		snap.Players = players
	}

	logCtx.Trace().
		Dur("latency", snap.Latency).
		Str("name", info.Name).
		Int("players", len(snap.Players)).
		Msg("Target probed")

	return snap
}

func (p *Prober) resolve(target models.Target) (*net.UDPAddr, error) {
	if p.options.Strict {
		return ssq.Resolve(target.Host, target.Port)
	}

	return ssq.ResolveAny(target.Host, target.Port)
}
