package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStateToken(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{32}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := NewStateToken()
		require.NoError(t, err)
		require.Regexp(t, re, tok)
		require.False(t, seen[tok], "duplicate token")
		seen[tok] = true
	}
}
