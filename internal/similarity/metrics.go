package similarity

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"
)

// SequenceRatio returns 2*M/T where M is the total size of the matching
// blocks between the two rune sequences and T is their combined length.
// Two empty strings are identical (1.0). The junk heuristic is off so
// long texts are compared in full.
func SequenceRatio(a, b string) float64 {
	return difflib.NewMatcherWithJunk(runeStrings(a), runeStrings(b), false, nil).Ratio()
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Cosine is the cosine similarity of the word-frequency vectors of two
// normalized texts.
func Cosine(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	fa := frequencies(ta)
	fb := frequencies(tb)

	var dot, na, nb float64
	for w, ca := range fa {
		na += float64(ca * ca)
		if cb, ok := fb[w]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range fb {
		nb += float64(cb * cb)
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func frequencies(words []string) map[string]int {
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}
	return freq
}

// Jaccard is the Jaccard index of the character tri-gram sets of two
// normalized texts. Texts shorter than three runes count as one gram.
func Jaccard(a, b string) float64 {
	ga, gb := trigrams(a), trigrams(b)
	if len(ga) == 0 && len(gb) == 0 {
		return 1.0
	}

	inter := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			inter++
		}
	}
	union := len(ga) + len(gb) - inter

	return float64(inter) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	r := []rune(s)
	grams := make(map[string]struct{})
	if len(r) == 0 {
		return grams
	}
	if len(r) < 3 {
		grams[s] = struct{}{}
		return grams
	}
	for i := 0; i+3 <= len(r); i++ {
		grams[string(r[i:i+3])] = struct{}{}
	}
	return grams
}
