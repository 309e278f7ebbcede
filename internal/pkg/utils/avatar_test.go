package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvatarURL(t *testing.T) {
	assert.Empty(t, AvatarURL("  ", 80))

	url := AvatarURL(" Eve@Example.com ", 0)
	assert.True(t, strings.HasPrefix(url, "https://www.gravatar.com/avatar/"))
	assert.True(t, strings.HasSuffix(url, "?s=200&d=mp"))
	assert.Equal(t, url, AvatarURL("eve@example.com", 200), "address is normalized")
	assert.Contains(t, AvatarURL("eve@example.com", 64), "s=64")
}
