package ssq

import (
	"fmt"
	"net"
	"time"
)

// Default transport settings.
const (
	DefaultSendTimeout    = 3 * time.Second
	DefaultReceiveTimeout = 3 * time.Second
	DefaultBufferSize     = 1400
)

// Transport performs one request/reply exchange: send a single datagram to
// endpoint and wait for a single reply datagram.
type Transport interface {
	Exchange(endpoint *net.UDPAddr, request []byte) ([]byte, error)
}

// UDPTransport opens a fresh UDP socket for every exchange and closes it on
// every exit path.
type UDPTransport struct {
	// SendTimeout bounds the write of the request.
	SendTimeout time.Duration

	// ReceiveTimeout bounds the wait for the reply.
	ReceiveTimeout time.Duration

	// BufferSize is the largest reply accepted; longer datagrams are truncated by the kernel.
	BufferSize uint16
}

// NewUDPTransport returns a transport with the default timeouts and buffer size.
func NewUDPTransport() *UDPTransport {
	return &UDPTransport{
		SendTimeout:    DefaultSendTimeout,
		ReceiveTimeout: DefaultReceiveTimeout,
		BufferSize:     DefaultBufferSize,
	}
}

// Exchange implements Transport. Every failure, timeouts included, wraps ErrUnreachable.
func (t *UDPTransport) Exchange(endpoint *net.UDPAddr, request []byte) ([]byte, error) {
	if endpoint == nil {
		return nil, fmt.Errorf("%w: nil endpoint", ErrUnreachable)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open socket: %w", ErrUnreachable, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetWriteDeadline(time.Now().Add(t.SendTimeout)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if _, err := conn.WriteToUDP(request, endpoint); err != nil {
		return nil, fmt.Errorf("%w: send to %s: %w", ErrUnreachable, endpoint, err)
	}

	size := int(t.BufferSize)
	if size == 0 {
		size = DefaultBufferSize
	}
	buf := make([]byte, size)

	if err := conn.SetReadDeadline(time.Now().Add(t.ReceiveTimeout)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: receive from %s: %w", ErrUnreachable, endpoint, err)
	}

	return buf[:n], nil
}
