package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "****6789", MaskSecret("abc_def_0123456789"))
}

func TestMaskFields(t *testing.T) {
	masked := MaskFields(map[string]any{
		"username": "alice",
		"Key":      "0123456789abcdef",
		"nested":   map[string]any{"token": "fedcba9876543210"},
		"count":    3,
	}, "key", "token")

	assert.Equal(t, "alice", masked["username"])
	assert.Equal(t, "****cdef", masked["Key"])
	assert.Equal(t, map[string]any{"token": "****3210"}, masked["nested"])
	assert.Equal(t, 3, masked["count"])
	assert.Nil(t, MaskFields(nil, "key"))
}
