package phrase

import (
	"errors"
	"sort"
)

// ErrSetFull is returned when adding to a TargetPhraseSet that reached its capacity.
var ErrSetFull = errors.New("target phrase set is full")

// TargetPhrase is one candidate translation of a source span (or, for hierarchical
// search, one rule application over a span).
type TargetPhrase struct {
	// Words is the target side. Rule targets may contain non-terminals ("[X,1]").
	Words []string
	// Source is the rule's source pattern; empty for plain phrases.
	Source []string
	// LHS is the rule's left-hand-side label.
	LHS string
	// Children are the source spans bound to the source non-terminals, in index order.
	Children []Span
	// Unknown marks a pass-through copy of an untranslatable source token.
	Unknown bool

	// Scores holds the stateless part of the score vector.
	Scores ScoreVector
	// Score is Scores weighted.
	Score float64
	// Estimate is the weighted isolation estimate of the stateful features.
	Estimate float64

	seq int
}

// Total is the sort key used for pruning candidate lists and for future costs.
func (tp *TargetPhrase) Total() float64 {
	return tp.Score + tp.Estimate
}

// Terminals returns the target words without non-terminals.
func (tp *TargetPhrase) Terminals() []string {
	return Terminals(tp.Words)
}

// IsRule reports whether the phrase has non-terminal children.
func (tp *TargetPhrase) IsRule() bool {
	return len(tp.Children) > 0
}

// TargetPhraseSet is the append-only, fixed-capacity candidate list of one span,
// filled from one table provider.
type TargetPhraseSet struct {
	phrases []*TargetPhrase
	added   int
}

// NewTargetPhraseSet creates a set holding at most capacity phrases.
func NewTargetPhraseSet(capacity int) *TargetPhraseSet {
	return &TargetPhraseSet{phrases: make([]*TargetPhrase, 0, capacity)}
}

// Add appends tp, remembering insertion order for tie-breaking.
func (s *TargetPhraseSet) Add(tp *TargetPhrase) error {
	if len(s.phrases) == cap(s.phrases) {
		return ErrSetFull
	}
	tp.seq = s.added
	s.added++
	s.phrases = append(s.phrases, tp)
	return nil
}

// SortAndPrune orders the set by Total descending (ties by insertion order) and keeps
// the first min(limit, size). A limit <= 0 keeps everything.
func (s *TargetPhraseSet) SortAndPrune(limit int) {
	sort.SliceStable(s.phrases, func(i, j int) bool {
		a, b := s.phrases[i], s.phrases[j]
		if a.Total() != b.Total() {
			return a.Total() > b.Total()
		}
		return a.seq < b.seq
	})
	if limit > 0 && len(s.phrases) > limit {
		for i := limit; i < len(s.phrases); i++ {
			s.phrases[i] = nil
		}
		s.phrases = s.phrases[:limit]
	}
}

// Len returns the number of phrases.
func (s *TargetPhraseSet) Len() int {
	return len(s.phrases)
}

// At returns the i-th phrase.
func (s *TargetPhraseSet) At(i int) *TargetPhrase {
	return s.phrases[i]
}

// Phrases returns the phrases in their current order.
func (s *TargetPhraseSet) Phrases() []*TargetPhrase {
	return s.phrases
}
