package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinRatio(t *testing.T) {
	t.Parallel()

	l := Levenshtein{}
	assert.Equal(t, 1.0, l.Ratio("", ""))
	assert.Equal(t, 1.0, l.Ratio("same title", "same title"))
	assert.Equal(t, 0.0, l.Ratio("abc", "xyz"))
	assert.InDelta(t, 0.9, l.Ratio("abcdefghij", "abcdefghik"), 1e-9)
	assert.InDelta(t, 0.75, l.Ratio("café", "cafe"), 1e-9)
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello world", NormalizeTitle("  Hello \t  WORLD \n"))
	assert.Equal(t, "", NormalizeTitle("   "))
}
