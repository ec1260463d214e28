package ff

import (
	"context"

	"github.com/teatak/smt/dictionary"
	"github.com/teatak/smt/phrase"
)

// DefaultMaxSpan bounds the source spans hierarchical rules are matched on.
const DefaultMaxSpan = 10

// RuleTableMemory provides synchronous grammar rules read from a text file. Lexical
// rules behave like phrase pairs; rules with gaps bind sub-spans as children.
type RuleTableMemory struct {
	*PhraseDictionary
	maxSpan int
}

func NewRuleTableMemory(spec *Spec) (FeatureFunction, error) {
	pd, err := newPhraseDictionary(spec)
	if err != nil {
		return nil, err
	}
	maxSpan, err := spec.Int("max-span", DefaultMaxSpan)
	if err != nil {
		return nil, err
	}
	pd.fill = func(_ context.Context, t *dictionary.Table) error {
		return t.LoadRules(pd.path)
	}
	return &RuleTableMemory{PhraseDictionary: pd, maxSpan: maxSpan}, nil
}

// NewRuleTableFromTable serves an already filled rule table.
func NewRuleTableFromTable(spec *Spec, t *dictionary.Table, tableLimit, maxSpan int) *RuleTableMemory {
	return &RuleTableMemory{PhraseDictionary: NewPhraseDictionaryFromTable(spec, t, tableLimit), maxSpan: maxSpan}
}

func (f *RuleTableMemory) Lookup(src phrase.Phrase, s phrase.Span) []*phrase.TargetPhrase {
	out := f.PhraseDictionary.Lookup(src, s)
	if f.maxSpan > 0 && s.Len() > f.maxSpan {
		return out
	}
	for _, r := range f.table.Rules {
		for _, children := range phrase.MatchPattern(src, s, r.Source) {
			out = append(out, f.newTarget(r, children))
		}
	}
	return out
}
