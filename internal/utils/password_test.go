package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEqual(t, "pw123456", hash)
	require.True(t, strings.HasPrefix(hash, "$2a$"))

	require.True(t, CheckPasswordHash("pw123456", hash))
	require.False(t, CheckPasswordHash("pw1234567", hash))
	require.False(t, CheckPasswordHash("", hash))
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("pw123456")
	require.NoError(t, err)
	second, err := HashPassword("pw123456")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
