package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFromGOOS verifies the fixed GOOS mapping and rejection of everything else.
func TestFromGOOS(t *testing.T) {
	t.Parallel()

	cases := map[string]OSKey{
		"windows": Windows,
		"linux":   Linux,
		"darwin":  Mac,
		"Windows": Windows,
	}
	for goos, want := range cases {
		got, err := fromGOOS(goos)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	for _, goos := range []string{"freebsd", "plan9", "js", ""} {
		_, err := fromGOOS(goos)
		require.ErrorIs(t, err, ErrUnsupported)
	}
}

// TestCurrent ensures the test host itself resolves without error.
func TestCurrent(t *testing.T) {
	t.Parallel()

	key, err := Current()
	require.NoError(t, err)
	require.Contains(t, []OSKey{Windows, Linux, Mac}, key)
}
