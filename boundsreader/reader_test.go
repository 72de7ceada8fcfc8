package boundsreader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadBytesExactBounds(t *testing.T) {
	r := New([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	b, err := r.ReadBytes(2, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{3, 4, 5, 6}, b)

	_, err = r.ReadBytes(6, 4)
	require.Error(t, err)
	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	require.Equal(t, int64(6), insufficient.Offset)
	require.Equal(t, int64(4), insufficient.Needed)
	require.Equal(t, int64(2), insufficient.Available)
}

func TestReadBytesNegativeOffset(t *testing.T) {
	r := New([]byte{1, 2, 3, 4})
	_, err := r.ReadBytes(-1, 2)
	require.Error(t, err)
}

func TestReadU32LittleEndian(t *testing.T) {
	r := New([]byte{0xcf, 0xfa, 0xed, 0xfe})
	v, err := r.ReadU32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0xfeedfacf), v)
}

func TestReadU32BigEndian(t *testing.T) {
	r := New([]byte{0xfa, 0xde, 0x0c, 0xc0})
	v, err := r.ReadU32BE(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0xfade0cc0), v)
}

func TestReadFixedStringTrimsAtNUL(t *testing.T) {
	r := New(append([]byte("__TEXT"), make([]byte, 10)...))
	s, err := r.ReadFixedString(0, 16)
	require.NoError(t, err)
	require.Equal(t, "__TEXT", s)
}

func TestSliceRestrictsWindow(t *testing.T) {
	r := New([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	sub, err := r.Slice(4, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), sub.Size())

	b, err := sub.ReadBytes(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5, 6, 7}, b)

	_, err = sub.ReadBytes(0, 5)
	require.Error(t, err)
}

func TestEmptyFileIsInsufficient(t *testing.T) {
	r := New(nil)
	_, err := r.ReadBytes(0, 1)
	require.Error(t, err)
}
