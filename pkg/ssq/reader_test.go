package ssq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderSequential(t *testing.T) {
	w := &wire{}
	w.u8(7).u16(0xBEEF).i32(-5).f32(1.5).u64(1 << 40).str("abc")
	r := newReader(w.Bytes())

	b, err := r.readByte()
	require.NoError(t, err)
	assert.Equal(t, byte(7), b)

	u16, err := r.readUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)

	i32, err := r.readInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-5), i32)

	f32, err := r.readFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f32)

	u64, err := r.readUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), u64)

	s, err := r.readString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)
	assert.Zero(t, r.remaining())
}

func TestReaderOverrun(t *testing.T) {
	r := newReader([]byte{1, 2, 3})

	_, err := r.readUint32()
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, 0, r.pos, "failed read must not advance")

	_, err = r.readUint64()
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = r.readBytes(4)
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = r.readBytes(-1)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestReaderUnterminatedString(t *testing.T) {
	r := newReader([]byte("no terminator"))

	_, err := r.readString()
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, 0, r.pos)
}

func TestReaderEmptyString(t *testing.T) {
	r := newReader([]byte{0, 'x'})

	s, err := r.readString()
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Equal(t, 1, r.remaining())
}
