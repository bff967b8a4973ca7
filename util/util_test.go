package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestUtil_CharacterClasses(t *testing.T) {
	assert.True(t, IsLetterOrUnderscore('_'))
	assert.True(t, IsLetterOrUnderscore('Q'))
	assert.False(t, IsLetterOrUnderscore('7'))
	assert.True(t, IsLetterOrUnderscoreOrNumber('7'))
	assert.False(t, IsLetterOrUnderscoreOrNumber('#'))
	assert.True(t, IsSpace('\t'))
	assert.False(t, IsSpace('a'))
	for _, b := range []byte("{}()[].,;+-*/&|<>=~") {
		assert.True(t, IsSymbol(b), string(b))
	}
	assert.False(t, IsSymbol('#'))
	assert.False(t, IsSymbol('"'))
}
