package ssq

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// resolveTimeout bounds a single DNS lookup.
const resolveTimeout = 5 * time.Second

// Resolve turns a host name and port into a single IPv4 UDP endpoint.
// It fails when the host has no IPv4 address or, with strict set, more than one.
func Resolve(host string, port int) (*net.UDPAddr, error) {
	return resolve(host, port, true)
}

// ResolveAny is Resolve without the single-address requirement; the first address wins.
func ResolveAny(host string, port int) (*net.UDPAddr, error) {
	return resolve(host, port, false)
}

func resolve(host string, port int, strict bool) (*net.UDPAddr, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: invalid port %d", ErrResolve, port)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrResolve, host)
		}
		return net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr, uint16(port))), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolve, host, err)
	}

	switch {
	case len(ips) == 0:
		return nil, fmt.Errorf("%w: %s has no addresses", ErrResolve, host)
	case strict && len(ips) > 1:
		return nil, fmt.Errorf("%w: %s resolves to %d addresses", ErrResolve, host, len(ips))
	}

	return &net.UDPAddr{IP: ips[0], Port: port}, nil
}
