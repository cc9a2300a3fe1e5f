package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "unlimited", Truncate("unlimited", 0))
	assert.Equal(t, "upstr...", Truncate("upstream exploded", 5))
	// "é" is two bytes; cutting inside it backs off to the rune start
	assert.Equal(t, "caf...", Truncate("café au lait", 4))
}
