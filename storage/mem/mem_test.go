package mem

import (
	"testing"

	"github.com/behrlich/ringlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUndersizedRegion(t *testing.T) {
	_, err := New(31, 16)
	require.Error(t, err)
	assert.True(t, ringlog.IsKind(err, ringlog.KindTooSmallRegion))
}

func TestNewRejectsNonMultipleSize(t *testing.T) {
	_, err := New(100, 16)
	require.Error(t, err)
	assert.True(t, ringlog.IsKind(err, ringlog.KindDataLenMismatch))
}

func TestReadWriteRoundTrip(t *testing.T) {
	s, err := New(64, 16)
	require.NoError(t, err)

	in := []byte("0123456789abcdef")
	_, err = s.Write(1, in)
	require.NoError(t, err)

	out := make([]byte, 16)
	_, err = s.Read(1, out)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadWriteOutOfRange(t *testing.T) {
	s, err := New(64, 16)
	require.NoError(t, err)

	_, err = s.Read(4, make([]byte, 16))
	assert.True(t, ringlog.IsKind(err, ringlog.KindBlockOutOfRange))

	_, err = s.Write(4, make([]byte, 16))
	assert.True(t, ringlog.IsKind(err, ringlog.KindBlockOutOfRange))
}

func TestWriteDataLenMismatch(t *testing.T) {
	s, err := New(64, 16)
	require.NoError(t, err)

	_, err = s.Write(0, make([]byte, 15))
	assert.True(t, ringlog.IsKind(err, ringlog.KindDataLenMismatch))
}

func TestNewAtOffsetsBlockIndices(t *testing.T) {
	s, err := NewAt(64, 16, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), s.MinBlockIndex())
	assert.Equal(t, uint64(104), s.MaxBlockIndex())

	in := []byte("0123456789abcdef")
	_, err = s.Write(100, in)
	require.NoError(t, err)

	out := make([]byte, 16)
	_, err = s.Read(100, out)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
