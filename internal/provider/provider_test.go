package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"85%", 85, true},
		{"Prob. 72,5 %", 72.5, true},
		{"titular 40.25%", 40.25, true},
		{"100%", 100, true},
		{"0 %", 0, true},
		{"120%", 0, false},
		{"85", 0, false},
		{"", 0, false},
		{"—", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			got, ok := ParsePercent(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDedupeKeepsFirst(t *testing.T) {
	t.Parallel()

	in := []PlayerRecord{
		{Team: "Betis", Name: "Isco", StartProbability: 80},
		{Team: "Betis", Name: "Isco", StartProbability: 20},
		{Team: "Sevilla", Name: "Isco", StartProbability: 10},
	}
	out := Dedupe(in)
	assert.Len(t, out, 2)
	assert.InDelta(t, 80.0, out[0].StartProbability, 1e-9)
	assert.Equal(t, "Sevilla", out[1].Team)
}

func TestSortByProbabilityIsStable(t *testing.T) {
	t.Parallel()

	in := []PlayerRecord{
		{Name: "a", StartProbability: 50},
		{Name: "b", StartProbability: 90},
		{Name: "c", StartProbability: 50},
	}
	SortByProbability(in)
	assert.Equal(t, []string{"b", "a", "c"}, []string{in[0].Name, in[1].Name, in[2].Name})
}

func TestNamesAndFilterTeam(t *testing.T) {
	t.Parallel()

	in := []PlayerRecord{
		{Team: "Betis", Name: "Isco"},
		{Team: "Sevilla", Name: "Isco"},
		{Team: "Sevilla", Name: "Navas"},
	}
	assert.Equal(t, []string{"Isco", "Navas"}, Names(in))
	assert.Len(t, FilterTeam(in, "Sevilla"), 2)
	assert.Empty(t, FilterTeam(in, "Girona"))
}
