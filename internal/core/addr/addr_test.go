package addr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	a, err := Parse("0x00112233445566778899aabbccddeeff00112233")
	require.NoError(t, err)
	require.Equal(t, "0x00112233445566778899aabbccddeeff00112233", a.String())

	for _, bad := range []string{
		"",
		"00112233445566778899aabbccddeeff00112233",  // missing prefix
		"0x00112233445566778899aabbccddeeff001122",   // too short
		"0x00112233445566778899aabbccddeeff0011223g", // not hex
	} {
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrInvalidAddress, "input %q", bad)
	}
}

func TestFromBytes(t *testing.T) {
	raw := make([]byte, Length)
	raw[0] = 0xab
	a, err := FromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, raw, a.Bytes())

	_, err = FromBytes(raw[:10])
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestIsZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	a := MustParse("0x00112233445566778899aabbccddeeff00112233")
	require.False(t, a.IsZero())
}
