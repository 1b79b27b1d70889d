package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetClearCount(t *testing.T) {
	s := New(10)
	require.Equal(t, 0, s.Count())
	s.SetBit(2)
	s.SetBit(7)
	require.True(t, s.Get(2))
	require.False(t, s.Get(3))
	require.Equal(t, 2, s.Count())
	s.Clear(2)
	require.False(t, s.Get(2))
	require.Equal(t, 1, s.Count())
}

func TestStringRoundTrip(t *testing.T) {
	s := New(8)
	s.SetBit(0)
	s.SetBit(3)
	s.SetBit(7)
	str := s.String()
	require.Equal(t, 8, len(str))

	back, err := FromString(str)
	require.NoError(t, err)
	require.True(t, s.Equal(back))
	require.Equal(t, s.Count(), back.Count())
}

func TestAndOrXor(t *testing.T) {
	a, _ := FromString("1100")
	b, _ := FromString("1010")

	require.Equal(t, "1000", a.And(b).String())
	require.Equal(t, "1110", a.Or(b).String())
	require.Equal(t, "0110", a.Xor(b).String())
}

func TestNotRestrictedToLength(t *testing.T) {
	a, _ := FromString("1100")
	n := a.Not()
	require.Equal(t, "0011", n.String())
	require.Equal(t, 4, n.Len())
}

func TestIntersectsAndIsZero(t *testing.T) {
	a, _ := FromString("0100")
	b, _ := FromString("0001")
	require.False(t, a.Intersects(b))
	require.True(t, a.Intersects(a))

	z := New(4)
	require.True(t, z.IsZero())
	z.SetBit(1)
	require.False(t, z.IsZero())
}

func TestSetIndices(t *testing.T) {
	a, _ := FromString("0101100")
	require.Equal(t, []int{1, 3, 4}, a.SetIndices())
}

func TestFromStringRejectsInvalidChar(t *testing.T) {
	_, err := FromString("012")
	require.Error(t, err)
}

func TestLongerThanOneWord(t *testing.T) {
	s := New(130)
	s.SetBit(129)
	s.SetBit(0)
	require.Equal(t, 2, s.Count())
	require.True(t, s.Get(129))

	str := s.String()
	back, err := FromString(str)
	require.NoError(t, err)
	require.True(t, s.Equal(back))
}
