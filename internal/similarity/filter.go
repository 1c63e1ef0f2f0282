package similarity

import (
	"fmt"
	"math"
)

// BlendFunc combines the three metrics into one score in [0,1]
type BlendFunc func(sequence, cosine, jaccard float64) float64

// Combined takes the larger of the sequence ratio and the mean of the
// token cosine and tri-gram Jaccard scores.
func Combined(sequence, cosine, jaccard float64) float64 {
	return math.Max(sequence, (cosine+jaccard)/2)
}

// SequenceOnly ignores the token metrics
func SequenceOnly(sequence, _, _ float64) float64 {
	return sequence
}

// Blend names accepted in configuration
const (
	BlendCombined = "combined"
	BlendSequence = "sequence"
)

// BlendByName resolves a configured blend function
func BlendByName(name string) (BlendFunc, error) {
	switch name {
	case "", BlendCombined:
		return Combined, nil
	case BlendSequence:
		return SequenceOnly, nil
	default:
		return nil, fmt.Errorf("unknown similarity blend %q", name)
	}
}

// Defaults
const (
	DefaultThreshold = 0.6
	DefaultWindow    = 50
)

// Scores is the breakdown for one pair of texts
type Scores struct {
	Sequence float64 `json:"sequence"`
	Cosine   float64 `json:"cosine"`
	Jaccard  float64 `json:"jaccard"`
	Combined float64 `json:"combined"`
}

// Match is the closest prior found for a candidate
type Match struct {
	Index  int // index into the priors passed in, -1 when there were none
	Scores Scores
}

// Filter decides whether a candidate repeats recent prior posts
type Filter struct {
	Threshold float64
	Window    int
	Blend     BlendFunc
}

// NewFilter creates a filter. Non-positive threshold or window values and a
// nil blend select the defaults; config.Validate rejects such thresholds
// before they reach here.
func NewFilter(threshold float64, window int, blend BlendFunc) *Filter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if blend == nil {
		blend = Combined
	}
	return &Filter{Threshold: threshold, Window: window, Blend: blend}
}

// Compare scores two raw texts
func (f *Filter) Compare(a, b string) Scores {
	return f.compareNormalized(Normalize(a), Normalize(b))
}

func (f *Filter) compareNormalized(a, b string) Scores {
	s := Scores{
		Sequence: SequenceRatio(a, b),
		Cosine:   Cosine(a, b),
		Jaccard:  Jaccard(a, b),
	}
	blend := f.Blend
	if blend == nil {
		blend = Combined
	}
	s.Combined = blend(s.Sequence, s.Cosine, s.Jaccard)
	return s
}

// recent returns the start index of the comparison window
func (f *Filter) recent(priors []string) int {
	if f.Window > 0 && len(priors) > f.Window {
		return len(priors) - f.Window
	}
	return 0
}

// Best returns the highest scoring prior within the window. Priors are
// ordered oldest first.
func (f *Filter) Best(candidate string, priors []string) Match {
	best := Match{Index: -1}
	if len(priors) == 0 {
		return best
	}

	norm := Normalize(candidate)
	for i := f.recent(priors); i < len(priors); i++ {
		s := f.compareNormalized(norm, Normalize(priors[i]))
		if best.Index < 0 || s.Combined > best.Scores.Combined {
			best = Match{Index: i, Scores: s}
		}
	}
	return best
}

// TooSimilar reports whether the candidate scores at or above the
// threshold against any prior in the window. Empty priors never match.
func (f *Filter) TooSimilar(candidate string, priors []string) bool {
	if len(priors) == 0 {
		return false
	}

	norm := Normalize(candidate)
	for i := f.recent(priors); i < len(priors); i++ {
		if f.compareNormalized(norm, Normalize(priors[i])).Combined >= f.Threshold {
			return true
		}
	}
	return false
}
