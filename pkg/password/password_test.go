package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFormat(t *testing.T) {
	stored, err := Hash("admin123")
	require.NoError(t, err)

	parts := strings.Split(stored, ".")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 128) // 64-byte key, hex encoded
	assert.Len(t, parts[1], 32)  // 16-byte salt, hex encoded
}

func TestVerifyRoundTrip(t *testing.T) {
	stored, err := Hash("s3cret-pass")
	require.NoError(t, err)

	ok, err := Verify("s3cret-pass", stored)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong-pass", stored)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same-password")
	require.NoError(t, err)
	second, err := Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyMalformedStored(t *testing.T) {
	_, err := Verify("anything", "not-a-stored-hash")
	assert.Error(t, err)

	_, err = Verify("anything", "zzzz.zzzz")
	assert.Error(t, err)
}
