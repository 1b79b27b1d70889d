package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsArePositive(t *testing.T) {
	require.Greater(t, MaxScoreByte, 0)
	require.Greater(t, DefaultToleranceDivisor, 0)
	require.Greater(t, DefaultLaneWidth, 0)
	require.Greater(t, DefaultNAbort, 0)
}
