package phrase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverage(t *testing.T) {
	c := NewCoverage(70)
	assert.Equal(t, 0, c.Count())
	assert.Equal(t, 0, c.FirstGap())

	c2 := c.With(Span{Start: 0, End: 2}).With(Span{Start: 65, End: 66})
	assert.Equal(t, 0, c.Count(), "With must not modify the receiver")
	assert.Equal(t, 5, c2.Count())
	assert.True(t, c2.IsSet(65))
	assert.False(t, c2.IsSet(64))
	assert.True(t, c2.Overlaps(Span{Start: 2, End: 4}))
	assert.False(t, c2.Overlaps(Span{Start: 3, End: 64}))
	assert.Equal(t, 3, c2.FirstGap())
	assert.Equal(t, []Span{{3, 64}, {67, 69}}, c2.Gaps())
	assert.NotEqual(t, c.Key(), c2.Key())

	full := c2.With(Span{Start: 3, End: 64}).With(Span{Start: 67, End: 69})
	assert.True(t, full.Full())
	assert.Equal(t, -1, full.FirstGap())
	assert.Empty(t, full.Gaps())
}

func TestParseNonTerminal(t *testing.T) {
	tests := []struct {
		tok  string
		want NonTerminal
		ok   bool
	}{
		{"[X,1]", NonTerminal{"X", 1}, true},
		{"[S,2]", NonTerminal{"S", 2}, true},
		{"[X]", NonTerminal{}, false},
		{"[X,0]", NonTerminal{}, false},
		{"house", NonTerminal{}, false},
		{"[,1]", NonTerminal{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseNonTerminal(tt.tok)
		assert.Equal(t, tt.ok, ok, tt.tok)
		assert.Equal(t, tt.want, got, tt.tok)
	}
	assert.Equal(t, []string{"of"}, Terminals([]string{"[X,2]", "of", "[X,1]"}))
}

func newScored(score float64) *TargetPhrase {
	return &TargetPhrase{Score: score}
}

func TestTargetPhraseSetSortAndPrune(t *testing.T) {
	scores := []float64{-3, -1, -2, -1, -5}
	build := func() *TargetPhraseSet {
		s := NewTargetPhraseSet(len(scores))
		for _, sc := range scores {
			require.NoError(t, s.Add(newScored(sc)))
		}
		return s
	}

	s := build()
	assert.ErrorIs(t, s.Add(newScored(0)), ErrSetFull)

	s.SortAndPrune(3)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, -1.0, s.At(0).Total())
	assert.Equal(t, -1.0, s.At(1).Total())
	assert.Equal(t, -2.0, s.At(2).Total())
	// ties keep insertion order
	assert.Less(t, s.At(0).seq, s.At(1).seq)

	before := append([]*TargetPhrase(nil), s.Phrases()...)
	s.SortAndPrune(3)
	assert.Equal(t, before, s.Phrases())
	s.SortAndPrune(10)
	assert.Equal(t, before, s.Phrases())

	big := build()
	big.SortAndPrune(50)
	assert.Equal(t, len(scores), big.Len())
	for i := 1; i < big.Len(); i++ {
		assert.GreaterOrEqual(t, big.At(i-1).Total(), big.At(i).Total())
	}
}

func TestFutureCostTable(t *testing.T) {
	// options: [0,0]=1 [1,1]=1 [2,2]=4 [1,2]=2 [0,2]=6
	best := map[Span]float64{
		{0, 0}: 1, {1, 1}: 1, {2, 2}: 4, {1, 2}: 2, {0, 2}: 6,
	}
	table := NewFutureCostTable(3, func(s Span) (float64, bool) {
		c, ok := best[s]
		return c, ok
	})
	assert.Equal(t, 2.0, table.Cost(Span{0, 1}))
	assert.Equal(t, 2.0, table.Cost(Span{1, 2}))
	assert.Equal(t, 3.0, table.Cost(Span{0, 2}))

	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			for k := i; k < j; k++ {
				assert.LessOrEqual(t, table.Cost(Span{i, j}), table.Cost(Span{i, k})+table.Cost(Span{k + 1, j}))
			}
		}
	}

	cov := NewCoverage(3).With(Span{1, 1})
	assert.Equal(t, 5.0, table.Remaining(cov))

	holes := NewFutureCostTable(2, func(s Span) (float64, bool) { return 0, s == Span{0, 0} })
	assert.True(t, math.IsInf(holes.Cost(Span{1, 1}), 1))
}

func TestMatchPattern(t *testing.T) {
	src := Phrase{"la", "maison", "de", "jean", "bleue"}

	got := MatchPattern(src, Span{0, 3}, []string{"[X,1]", "de", "[X,2]"})
	assert.Equal(t, [][]Span{{{0, 1}, {3, 3}}}, got)

	got = MatchPattern(src, Span{0, 2}, []string{"[X,1]", "[X,2]"})
	assert.Equal(t, [][]Span{{{0, 0}, {1, 2}}, {{0, 1}, {2, 2}}}, got)

	assert.Empty(t, MatchPattern(src, Span{0, 1}, []string{"[X,1]", "de", "[X,2]"}))
	assert.Empty(t, MatchPattern(src, Span{1, 1}, []string{"la"}))
	assert.Equal(t, [][]Span{{}}, MatchPattern(src, Span{1, 1}, []string{"maison"}))
}

func TestOptionCollection(t *testing.T) {
	c := NewOptionCollection(3)
	c.Add(&TranslationOption{Span: Span{0, 0}, Target: &TargetPhrase{Score: -1}})
	c.Add(&TranslationOption{Span: Span{0, 1}, Target: &TargetPhrase{Score: -1.5}})
	c.Add(&TranslationOption{Span: Span{1, 2}, Target: &TargetPhrase{Score: -9, Children: []Span{{1, 1}}}})

	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.Get(Span{0, 1}), 1)
	assert.Nil(t, c.Get(Span{2, 5}))
	assert.Equal(t, []int{2}, c.Uncoverable())

	table := c.BuildFutureCosts()
	assert.Equal(t, 1.5, table.Cost(Span{0, 1}))
	assert.Equal(t, table, c.FutureCosts())
	assert.True(t, math.IsInf(c.Get(Span{0, 0})[0].RemainingCost, 1))
}
