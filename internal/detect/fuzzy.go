package detect

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	minWindow = 3
	maxWindow = 7
)

// Similarity is 1 - editDistance/longerLength, in [0, 1].
func Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// fuzzyMatches slides 3..7 word windows over text and reports the first
// window that comes close to each canonical phrase.
func fuzzyMatches(text string, phrases []string, threshold float64) []string {
	words := strings.Fields(text)
	seen := make(map[string]bool)
	var out []string

	for size := minWindow; size <= maxWindow; size++ {
		for i := 0; i+size <= len(words); i++ {
			chunk := strings.Join(words[i:i+size], " ")
			for _, canonical := range phrases {
				if seen[canonical] {
					continue
				}
				ratio := Similarity(chunk, canonical)
				if ratio < threshold {
					continue
				}
				seen[canonical] = true
				out = append(out, fmt.Sprintf("fuzzy_drift:%s (matched '%s' at %d%%)",
					canonical, chunk, int(math.Round(ratio*100))))
			}
		}
	}
	return out
}
