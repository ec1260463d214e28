package decoder

import (
	"strings"

	"github.com/teatak/smt/ff"
	"github.com/teatak/smt/phrase"
)

// NoHypothesis is the back-pointer of a root hypothesis.
const NoHypothesis = -1

// Hypothesis is a node of the search graph. Links to other hypotheses are arena
// indices. After creation only Pruned, RecombinedInto and Arcs change.
type Hypothesis struct {
	ID int
	// Prev is the predecessor in phrase-based search.
	Prev int
	// Children are the sub-derivations in chart search, indexed like Option.Target.Children.
	Children []int
	// Option is the applied option; nil for the root.
	Option *phrase.TranslationOption

	// Coverage is only set in phrase-based search.
	Coverage phrase.Coverage
	// Span is the last translated span (phrase-based) or the covered span (chart).
	Span  phrase.Span
	Label string

	Score       float64
	Scores      phrase.ScoreVector
	FutureScore float64
	States      []ff.State
	Fingerprint string

	Pruned         bool
	RecombinedInto int
	// Arcs are recombined hypotheses with the same fingerprint, kept for N-best lists.
	Arcs []int
}

// Estimate is the key used for recombination and pruning.
func (h *Hypothesis) Estimate() float64 {
	return h.Score + h.FutureScore
}

// fingerprint joins the state keys of h, prefixed by extra.
func fingerprint(extra string, states []ff.State) string {
	var sb strings.Builder
	sb.WriteString(extra)
	for _, st := range states {
		sb.WriteByte('|')
		sb.WriteString(st.Key())
	}
	return sb.String()
}
