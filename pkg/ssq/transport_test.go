package ssq

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveOnce answers the first datagram it receives with reply.
func serveOnce(t *testing.T, reply func(req []byte) []byte) (*net.UDPAddr, <-chan []byte) {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 1500)
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		got <- append([]byte(nil), buf[:n]...)
		if resp := reply(buf[:n]); resp != nil {
			_, _ = conn.WriteToUDP(resp, from)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr), got
}

func TestUDPTransportExchange(t *testing.T) {
	addr, got := serveOnce(t, func([]byte) []byte {
		return datagram(infoCore().Bytes())
	})

	c := New()
	info, err := c.GetServerInfo(addr)
	require.NoError(t, err)
	assert.Equal(t, "My Server", info.Name)
	assert.Equal(t, InfoRequest(), <-got)
}

func TestUDPTransportTimeout(t *testing.T) {
	addr, _ := serveOnce(t, func([]byte) []byte { return nil })

	tr := NewUDPTransport()
	tr.ReceiveTimeout = 100 * time.Millisecond

	start := time.Now()
	_, err := tr.Exchange(addr, ChallengeRequest())
	require.ErrorIs(t, err, ErrUnreachable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestUDPTransportNilEndpoint(t *testing.T) {
	_, err := NewUDPTransport().Exchange(nil, InfoRequest())
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestResolve(t *testing.T) {
	addr, err := Resolve("192.0.2.1", 27015)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1:27015", addr.String())

	_, err = Resolve("192.0.2.1", 70000)
	require.ErrorIs(t, err, ErrResolve)

	_, err = Resolve("host.invalid", 27015)
	require.ErrorIs(t, err, ErrResolve)

	_, err = Resolve("2001:db8::1", 27015)
	require.ErrorIs(t, err, ErrResolve)

	addr, err = Resolve("::ffff:192.0.2.7", 27015)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7:27015", addr.String())
}
