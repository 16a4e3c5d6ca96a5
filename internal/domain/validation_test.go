package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("face_maker01"))
	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername("has space"))
	assert.False(t, ValidUsername(strings.Repeat("a", 31)))
	assert.False(t, ValidUsername("日本語"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@example.com"))
	assert.False(t, ValidEmail("Alice <a@example.com>"))
	assert.False(t, ValidEmail("not-an-email"))
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "smile", NormalizeTag("  Smile "))
	assert.Equal(t, "笑顔", NormalizeTag("笑顔"))
	assert.Equal(t, "", NormalizeTag("   "))
	assert.Equal(t, "", NormalizeTag(strings.Repeat("x", MaxTagLength+1)))
}
