package decoder

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatak/smt/phrase"
)

func addHyp(a *Arena, fp, label string, score float64) int {
	return a.Add(Hypothesis{
		Prev:           NoHypothesis,
		RecombinedInto: NoHypothesis,
		Label:          label,
		Score:          score,
		Fingerprint:    fp,
	})
}

func TestArena_Paging(t *testing.T) {
	a := &Arena{}
	first := a.At(addHyp(a, "f0", "", 0))
	for i := 1; i < 3*pageSize; i++ {
		require.Equal(t, i, addHyp(a, "f"+strconv.Itoa(i), "", float64(-i)))
	}
	assert.Equal(t, 3*pageSize, a.Len())
	assert.Same(t, first, a.At(0))
	assert.Equal(t, 2*pageSize+5, a.At(2*pageSize+5).ID)
	assert.InDelta(t, float64(-pageSize), a.At(pageSize).Score, 1e-9)

	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, addHyp(a, "x", "", 0))
}

func TestStack_HistogramPruning(t *testing.T) {
	a := &Arena{}
	var st Stats
	s := NewStack(a, &st)
	for i := 0; i < 10; i++ {
		s.Add(addHyp(a, "f"+strconv.Itoa(i), "", float64(-i)))
	}
	s.Prune(3, -1)
	assert.Equal(t, []int{0, 1, 2}, s.Hypotheses())
	assert.Equal(t, 7, st.Pruned)
	assert.True(t, a.At(9).Pruned)
	assert.False(t, a.At(2).Pruned)
	assert.Equal(t, 0, s.Best())
}

func TestStack_BeamPruning(t *testing.T) {
	a := &Arena{}
	var st Stats
	s := NewStack(a, &st)
	for i, score := range []float64{-2, -1, -1, -1.5, -4} {
		s.Add(addHyp(a, "f"+strconv.Itoa(i), "", score))
	}

	s.Prune(0, 0)
	assert.Equal(t, []int{1, 2}, s.Hypotheses())

	s = NewStack(a, &st)
	for i := 0; i < 5; i++ {
		a.At(i).Pruned = false
		s.Add(i)
	}
	s.Prune(0, 1)
	assert.Equal(t, []int{1, 2, 3, 0}, s.Hypotheses())

	s = NewStack(a, &st)
	for i := 0; i < 5; i++ {
		s.Add(i)
	}
	s.Prune(0, -1)
	assert.Len(t, s.Hypotheses(), 5)
}

func TestStack_Recombination(t *testing.T) {
	a := &Arena{}
	var st Stats
	s := NewStack(a, &st)

	h0 := addHyp(a, "same", "", -3)
	h1 := addHyp(a, "same", "", -1)
	h2 := addHyp(a, "same", "", -2)
	h3 := addHyp(a, "same", "", -1)
	assert.True(t, s.Add(h0))
	assert.True(t, s.Add(h1))
	assert.False(t, s.Add(h2))
	assert.False(t, s.Add(h3))

	assert.Equal(t, []int{h1}, s.Hypotheses())
	assert.Equal(t, 3, st.Recombined)
	assert.Equal(t, h1, a.At(h0).RecombinedInto)
	assert.Equal(t, h1, a.At(h2).RecombinedInto)
	assert.Equal(t, h1, a.At(h3).RecombinedInto)
	assert.Equal(t, NoHypothesis, a.At(h1).RecombinedInto)
	assert.ElementsMatch(t, []int{h0, h2, h3}, a.At(h1).Arcs)
	assert.Empty(t, a.At(h0).Arcs)
}

func TestCell_LabelsPrunedSeparately(t *testing.T) {
	a := &Arena{}
	var st Stats
	c := NewCell(phrase.Span{Start: 0, End: 1}, a, &st)
	for i := 0; i < 4; i++ {
		c.Add(addHyp(a, "X"+strconv.Itoa(i), "X", float64(-i)))
		c.Add(addHyp(a, "S"+strconv.Itoa(i), "S", float64(-10-i)))
	}
	c.Prune(2, -1)

	assert.Equal(t, []string{"S", "X"}, c.Labels())
	assert.Equal(t, 4, c.Len())
	assert.Len(t, c.Hypotheses("S"), 2)
	assert.Len(t, c.Hypotheses("X"), 2)
	assert.Nil(t, c.Hypotheses("NP"))
	assert.Equal(t, 0, c.Best(""))
	assert.Equal(t, 1, c.Best("S"))
	assert.Equal(t, NoHypothesis, c.Best("NP"))
	assert.Len(t, c.All(), 4)
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	tests := []struct {
		name string
		edit func(*Options)
	}{
		{"algorithm", func(o *Options) { o.Algorithm = "cky" }},
		{"unknown", func(o *Options) { o.UnknownWords = "drop" }},
		{"stack size", func(o *Options) { o.StackSize = -1 }},
		{"phrase length", func(o *Options) { o.MaxPhraseLength = 0 }},
		{"expansions", func(o *Options) { o.MaxExpansions = -1 }},
		{"time limit", func(o *Options) { o.TimeLimit = -1 }},
		{"workers", func(o *Options) { o.ChartWorkers = 0 }},
		{"children", func(o *Options) { o.MaxChartChildren = -1 }},
		{"nbest", func(o *Options) { o.NBest = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.edit(&o)
			assert.Error(t, o.Validate())
		})
	}
}
