package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abcd", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// The em-dash is three bytes; a cut landing inside it must back off.
	s := "a — b"
	for max := 1; max <= len(s); max++ {
		got := Truncate(s, max)
		assert.True(t, utf8.ValidString(got), "max=%d", max)
		assert.LessOrEqual(t, len(got), max)
	}

	long := strings.Repeat("héllo wörld ", 50)
	got := Truncate(long, 161)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(long, got))
}
