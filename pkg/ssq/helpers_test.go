package ssq

import (
	"bytes"
	"encoding/binary"
	"math"
	"net"
	"sync"
)

// wire is a small little-endian writer used to craft replies.
type wire struct {
	bytes.Buffer
}

func (w *wire) u8(v byte) *wire {
	w.WriteByte(v)
	return w
}

func (w *wire) u16(v uint16) *wire {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, v)
	return w
}

func (w *wire) i32(v int32) *wire {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, v)
	return w
}

func (w *wire) f32(v float32) *wire {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, math.Float32bits(v))
	return w
}

func (w *wire) u64(v uint64) *wire {
	_ = binary.Write(&w.Buffer, binary.LittleEndian, v)
	return w
}

func (w *wire) str(s string) *wire {
	w.WriteString(s)
	w.WriteByte(0)
	return w
}

func (w *wire) raw(b ...byte) *wire {
	w.Write(b)
	return w
}

// datagram prefixes the body with the simple header.
func datagram(body []byte) []byte {
	return append([]byte{0xFF, 0xFF, 0xFF, 0xFF}, body...)
}

// infoCore writes an info reply up to and including the version string.
func infoCore() *wire {
	w := &wire{}
	w.u8(S2AInfo).u8(17).
		str("My Server").str("cp_badlands").str("tf").str("Team Fortress").
		u16(440).
		u8(12).u8(24).u8(2).
		u8('d').u8('l').u8(0).u8(1).
		str("8622567")

	return w
}

// playerBody writes a player reply with the declared count and rows.
func playerBody(count byte, rows ...PlayerInfo) []byte {
	w := &wire{}
	w.u8(S2APlayer).u8(count)
	for _, p := range rows {
		w.u8(p.Index).str(p.Name).i32(p.Score).f32(p.Duration)
	}

	return w.Bytes()
}

// fakeTransport replays canned replies and records requests.
type fakeTransport struct {
	mu       sync.Mutex
	replies  [][]byte
	errs     []error
	requests [][]byte
}

func (f *fakeTransport) Exchange(_ *net.UDPAddr, request []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.requests)
	f.requests = append(f.requests, append([]byte(nil), request...))

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.replies) {
		return nil, ErrUnreachable
	}

	return f.replies[i], nil
}

func testEndpoint() *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(192, 0, 2, 10), Port: 27015}
}
