package matcher

import (
	"regexp"
	"strings"
)

var (
	reParenGroup  = regexp.MustCompile(`\([^)]*\)`)
	reParenInner  = regexp.MustCompile(`\(([^)]+)\)`)
	reNonWordChar = regexp.MustCompile(`[^a-z0-9\s]`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases s, drops parenthesized groups and punctuation, and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = reParenGroup.ReplaceAllString(s, " ")
	s = reNonWordChar.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// tokens returns the set of whitespace-separated words of the normalized string.
func tokens(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(Normalize(s)) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard is |A∩B| / |A∪B| over the token sets of a and b; 0 when both are empty.
func Jaccard(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}
	inter := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// Similarity scores two candidate strings: 1 on exact equality, else Jaccard.
func Similarity(a, b string) float64 {
	if a != "" && a == b {
		return 1
	}
	return Jaccard(a, b)
}
