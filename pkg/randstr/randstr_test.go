package randstr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsesAlphabet(t *testing.T) {
	const alphabet = "ab1"
	for i := 0; i < 50; i++ {
		s, err := Generate(32, alphabet)
		require.NoError(t, err)
		assert.Len(t, s, 32)
		assert.True(t, Only(s, alphabet), s)
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	s, err := Generate(0, "abc")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = Generate(3, "")
	assert.ErrorIs(t, err, ErrEmptyAlphabet)
}

func TestOnly(t *testing.T) {
	assert.True(t, Only("", "abc"))
	assert.False(t, Only("abd", "abc"))
}
