package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInviteCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := newInviteCode()
		assert.Len(t, code, 12)
		assert.NotContains(t, code, "-")
		assert.Equal(t, strings.ToUpper(code), code)
		assert.False(t, seen[code], "invite codes must not repeat")
		seen[code] = true
	}
}
