package admission

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores two normalized titles in [0,1]; 1 means identical.
type Similarity interface {
	Ratio(a, b string) float64
}

// SimilarityFunc adapts a plain function to Similarity.
type SimilarityFunc func(a, b string) float64

func (f SimilarityFunc) Ratio(a, b string) float64 { return f(a, b) }

// Levenshtein is the default edit-distance similarity.
type Levenshtein struct{}

// Ratio returns 1 - distance/maxLen over runes.
func (Levenshtein) Ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// NormalizeTitle lowercases, trims and collapses whitespace.
func NormalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}
