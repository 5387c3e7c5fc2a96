package ssq

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// reader is a bounds-checked cursor over a reply body.
// Every read checks the remaining length first and fails with
// ErrMalformedResponse instead of running past the end of the buffer.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) ensure(n int) error {
	if n < 0 || r.remaining() < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedResponse, n, r.pos, r.remaining())
	}

	return nil
}

func (r *reader) readByte() (byte, error) {
	if err := r.ensure(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++

	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n

	return out, nil
}

func (r *reader) readUint16() (uint16, error) {
	if err := r.ensure(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2

	return v, nil
}

func (r *reader) readUint32() (uint32, error) {
	if err := r.ensure(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4

	return v, nil
}

func (r *reader) readInt32() (int32, error) {
	v, err := r.readUint32()
	return int32(v), err
}

func (r *reader) readFloat32() (float32, error) {
	v, err := r.readUint32()
	return math.Float32frombits(v), err
}

func (r *reader) readUint64() (uint64, error) {
	if err := r.ensure(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8

	return v, nil
}

// readString reads a null-terminated string. The terminator is consumed but
// not returned; a missing terminator is a decoding failure.
func (r *reader) readString() (string, error) {
	end := bytes.IndexByte(r.buf[r.pos:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrMalformedResponse, r.pos)
	}
	s := string(r.buf[r.pos : r.pos+end])
	r.pos += end + 1

	return s, nil
}
