package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and strips punctuation", "Cut Cloud Costs Now!!", "cut cloud costs now"},
		{"collapses whitespace", "  a \n\n b\t\tc  ", "a b c"},
		{"strips accents", "Café Déjà Vu", "cafe deja vu"},
		{"drops emoji", "🚀 Ship it 🔥", "ship it"},
		{"keeps digits and underscores", "99.9% uptime_slo", "999 uptime_slo"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestSequenceRatio(t *testing.T) {
	assert.Equal(t, 1.0, SequenceRatio("", ""))
	assert.Equal(t, 0.0, SequenceRatio("abc", ""))
	assert.Equal(t, 1.0, SequenceRatio("abcd", "abcd"))
	// "abcd" vs "bcde": one block "bcd" of size 3 -> 6/8
	assert.InDelta(t, 0.75, SequenceRatio("abcd", "bcde"), 1e-9)
	// difflib reference value for these two strings
	assert.InDelta(t, 0.9157, SequenceRatio(
		"kubernetes saves you money every month",
		"kubernetes saves you money every single month",
	), 0.001)
}

func TestSequenceRatio_LongTextComparedInFull(t *testing.T) {
	long := strings.Repeat("ship it ", 60)
	assert.Equal(t, 1.0, SequenceRatio(long, long))
	assert.Greater(t, SequenceRatio(long, long+"today"), 0.95)
}

func TestCosineAndJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine("a b c", "c b a"), 1e-9)
	assert.Equal(t, 0.0, Cosine("a b", "c d"))
	assert.Equal(t, 0.0, Cosine("a", ""))
	assert.Equal(t, 1.0, Cosine("", ""))

	assert.Equal(t, 1.0, Jaccard("abcd", "abcd"))
	assert.Equal(t, 0.0, Jaccard("abc", "xyz"))
	assert.Equal(t, 1.0, Jaccard("", ""))
	// {abc,bcd} vs {bcd,cde}
	assert.InDelta(t, 1.0/3.0, Jaccard("abcd", "bcde"), 1e-9)
	assert.Equal(t, 1.0, Jaccard("ab", "ab"))
}

func TestFilter_NormalizedIdenticalScoresOne(t *testing.T) {
	f := NewFilter(0.6, 50, nil)

	s := f.Compare("cut cloud costs now", "Cut Cloud Costs Now!!")
	assert.Equal(t, 1.0, s.Sequence)
	assert.Equal(t, 1.0, s.Combined)

	for _, threshold := range []float64{0.01, 0.5, 0.99, 1.0} {
		f := NewFilter(threshold, 50, nil)
		assert.True(t, f.TooSimilar("Cut Cloud Costs Now!!", []string{"cut cloud costs now"}),
			"threshold %v", threshold)
	}
}

func TestFilter_EmptyHistoryNeverSimilar(t *testing.T) {
	f := NewFilter(0.01, 50, nil)

	assert.False(t, f.TooSimilar("anything at all", nil))
	assert.False(t, f.TooSimilar("", []string{}))

	m := f.Best("anything", nil)
	assert.Equal(t, -1, m.Index)
}

func TestFilter_ThresholdExamples(t *testing.T) {
	f := NewFilter(0.6, 50, Combined)
	history := []string{"kubernetes saves you money every month"}

	assert.True(t, f.TooSimilar("Kubernetes saves you money every single month", history))
	assert.False(t, f.TooSimilar("terraform testing strategies", history))
}

func TestFilter_Window(t *testing.T) {
	f := NewFilter(0.9, 2, nil)
	priors := []string{
		"the duplicate post",
		"something unrelated about databases",
		"a third distinct post on monitoring",
	}

	// The duplicate is outside the two most recent entries
	assert.False(t, f.TooSimilar("The duplicate post!", priors))

	f.Window = 3
	assert.True(t, f.TooSimilar("The duplicate post!", priors))
}

func TestFilter_BestReturnsClosestPrior(t *testing.T) {
	f := NewFilter(0.6, 50, nil)
	priors := []string{
		"terraform modules for multi cloud",
		"kubernetes saves you money every month",
		"observability with prometheus",
	}

	m := f.Best("Kubernetes saves you money every single month", priors)
	require.Equal(t, 1, m.Index)
	assert.Greater(t, m.Scores.Combined, 0.9)
}

func TestBlendByName(t *testing.T) {
	b, err := BlendByName("sequence")
	require.NoError(t, err)
	assert.Equal(t, 0.2, b(0.2, 1, 1))

	b, err = BlendByName("")
	require.NoError(t, err)
	assert.Equal(t, 0.7, b(0.2, 0.6, 0.8))

	_, err = BlendByName("median")
	assert.Error(t, err)
}
