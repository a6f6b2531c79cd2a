package usecase

import (
	"regexp"
	"strings"

	"github.com/monitorlens/backend/internal/domain"
)

// nonAlphanumericPattern strips separators before model comparison so
// "24GQ50F-B" and "24GQ50FB" normalize to the same form.
var nonAlphanumericPattern = regexp.MustCompile(`[^A-Z0-9]`)

// ModelSimilarity returns a [0,1] similarity between two model identifiers:
// 1 minus the normalized edit distance over upper-cased, alphanumeric-only
// forms. Symmetric; identical normalized strings score 1.0; an empty side
// scores 0.
func ModelSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	normA := nonAlphanumericPattern.ReplaceAllString(strings.ToUpper(a), "")
	normB := nonAlphanumericPattern.ReplaceAllString(strings.ToUpper(b), "")

	if normA == "" || normB == "" {
		return 0.0
	}

	distance := levenshteinDistance(normA, normB)
	maxLen := len([]rune(normA))
	if l := len([]rune(normB)); l > maxLen {
		maxLen = l
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

// SpecsSimilarity returns the fraction of jointly-present spec keys whose
// values are exactly equal. Empty maps or a disjoint key set score 0.
func SpecsSimilarity(a, b domain.Specs) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	common := 0
	matches := 0
	for key, valA := range a {
		valB, ok := b[key]
		if !ok {
			continue
		}
		common++
		if valA == valB {
			matches++
		}
	}

	if common == 0 {
		return 0.0
	}
	return float64(matches) / float64(common)
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
