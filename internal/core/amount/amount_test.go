package amount

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokens(t *testing.T) {
	require.Equal(t, "1000000000000000000", Format(Tokens(1)))
	require.Equal(t, "2500000000000000000000", Format(Tokens(2500)))
}

func TestParse(t *testing.T) {
	v, err := Parse("123")
	require.NoError(t, err)
	require.True(t, v.Eq(New(123)))

	for _, bad := range []string{"", "12x", "-5", "0x10", " 1"} {
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestPercentTruncates(t *testing.T) {
	// 2% of 100 tokens is 2 tokens.
	require.True(t, Percent(Tokens(100), 2).Eq(Tokens(2)))

	// 5% of 2 tokens is 0.1 tokens.
	require.Equal(t, "100000000000000000", Format(Percent(Tokens(2), 5)))

	// 2% of 10 base units truncates to zero.
	require.True(t, Percent(New(10), 2).IsZero())

	require.True(t, Percent(Tokens(5), 0).IsZero())
}

func TestBytesRoundTrip(t *testing.T) {
	for _, v := range []*Amount{Zero(), New(1), New(255), New(256), Tokens(1_000_000)} {
		got := FromBytes(Bytes(v))
		require.True(t, got.Eq(v), "round trip of %s", Format(v))
	}

	// Zero encodes as nil for compact storage.
	require.Nil(t, Bytes(Zero()))
	require.Nil(t, Bytes(nil))
	require.True(t, FromBytes(nil).IsZero())
}

func TestAddSub(t *testing.T) {
	a := Tokens(10)
	b := Tokens(4)
	require.True(t, Add(a, b).Eq(Tokens(14)))
	require.True(t, Sub(a, b).Eq(Tokens(6)))

	// Operands are untouched.
	require.True(t, a.Eq(Tokens(10)))
	require.True(t, b.Eq(Tokens(4)))
}
