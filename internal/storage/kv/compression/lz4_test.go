package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLZ4RoundTrip(t *testing.T) {
	c := &LZ4Compressor{}

	// Repetitive data compresses well.
	data := bytes.Repeat([]byte("takd-ledger-entry"), 200)
	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestLZ4IncompressibleData(t *testing.T) {
	c := &LZ4Compressor{}

	// High-entropy short input falls back to a raw frame but still
	// round-trips.
	data := []byte{0x1f, 0x8b, 0x42, 0x99, 0x07, 0xee, 0x31, 0x5a}
	compressed, err := c.Compress(data)
	require.NoError(t, err)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestForName(t *testing.T) {
	require.Equal(t, "lz4", ForName("lz4").Name())
	require.Equal(t, "none", ForName("none").Name())
	require.Equal(t, "none", ForName("unknown").Name())
}
