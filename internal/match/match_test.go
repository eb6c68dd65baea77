package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, Ratio("Pedri", "Pedri"), 1e-9)
	assert.InDelta(t, 16.0/19.0, Ratio("Courtois", "T. Courtois"), 1e-9)
	assert.InDelta(t, 0.8, Ratio("Pedro", "Pedri"), 1e-9)
	assert.InDelta(t, 0.0, Ratio("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0, Ratio("", ""), 1e-9)
}

func TestRatioCountsRunes(t *testing.T) {
	t.Parallel()

	// "Muñiz" is 5 runes but 6 bytes; one substitution leaves 4 of 5 matching.
	assert.InDelta(t, 0.8, Ratio("Muñiz", "Muniz"), 1e-9)
}

func TestBestMatch(t *testing.T) {
	t.Parallel()

	pool := []string{"T. Courtois", "Vinícius Júnior", "Pedri", "Pedro"}

	tests := []struct {
		name   string
		query  string
		cutoff float64
		want   string
		ok     bool
	}{
		{"exact", "Pedri", DefaultCutoff, "Pedri", true},
		{"initial prefix", "Courtois", DefaultCutoff, "T. Courtois", true},
		{"strict cutoff rejects", "Courtois", 0.95, "", false},
		{"no similar name", "Lewandowski", DefaultCutoff, "", false},
		{"empty query", "", DefaultCutoff, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := BestMatch(tt.query, pool, tt.cutoff)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestBestMatchEmptyCandidates(t *testing.T) {
	t.Parallel()

	_, ok := BestMatch("Pedri", nil, DefaultCutoff)
	assert.False(t, ok)
}

func TestBestMatchTieGoesToFirstCandidate(t *testing.T) {
	t.Parallel()

	got, ok := BestMatch("ab", []string{"ax", "xb"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "ax", got.Name)
	assert.InDelta(t, 0.5, got.Score, 1e-9)
}

func TestBestMatchMonotonicInCutoff(t *testing.T) {
	t.Parallel()

	pool := []string{"T. Courtois", "Lunin", "Carvajal", "Rüdiger", "Bellingham"}
	queries := []string{"Courtois", "Lunín", "Carbajal", "Rudiger", "Belingham", "Mbappé"}

	prev := len(queries) + 1
	for _, cutoff := range []float64{0.3, 0.5, 0.6, 0.8, 0.9, 1.0} {
		n := 0
		for _, q := range queries {
			if _, ok := BestMatch(q, pool, cutoff); ok {
				n++
			}
		}
		assert.LessOrEqual(t, n, prev, "cutoff %.1f", cutoff)
		prev = n
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	pool := []string{"Pedro", "Pedri", "Pablo"}
	got := Suggest("Pedri", pool, SuggestCutoff, 2)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "Pedri", got[0].Name)
		assert.Equal(t, "Pedro", got[1].Name)
	}
	assert.Empty(t, Suggest("Zzz", pool, SuggestCutoff, 3))
}

func TestSuggestTiesKeepCandidateOrder(t *testing.T) {
	t.Parallel()

	got := Suggest("Pedra", []string{"Pedri", "Pedro"}, SuggestCutoff, 2)
	if assert.Len(t, got, 2) {
		assert.Equal(t, got[0].Score, got[1].Score)
		assert.Equal(t, "Pedri", got[0].Name)
		assert.Equal(t, "Pedro", got[1].Name)
	}
}
