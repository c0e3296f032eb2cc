package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecurePassword(t *testing.T) {
	p, err := GenerateSecurePassword(20)
	require.NoError(t, err)
	assert.Len(t, p, 20)
	assert.NotContains(t, p, "+")
	assert.NotContains(t, p, "/")

	short, err := GenerateSecurePassword(4)
	require.NoError(t, err)
	assert.Len(t, short, 12)

	other, err := GenerateSecurePassword(20)
	require.NoError(t, err)
	assert.NotEqual(t, p, other)
}
