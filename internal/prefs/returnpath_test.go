package prefs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReturnPathRoundTripClearsOnLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	route := Route{View: "purchases", Params: map[string]string{"date": "2025-11-01"}}
	require.NoError(t, SaveReturnPath(route))

	loaded, err := LoadReturnPath()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, route, *loaded)

	// one-shot: the second load finds nothing
	again, err := LoadReturnPath()
	require.NoError(t, err)
	require.Nil(t, again)
}

func TestReturnPathMissingIsNil(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	loaded, err := LoadReturnPath()
	require.NoError(t, err)
	require.Nil(t, loaded)
}
