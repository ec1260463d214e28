package ff

import "github.com/teatak/smt/phrase"

// Glue grammar labels.
const (
	GoalLabel = "S"
	XLabel    = "X"
)

var (
	glueUnarySource  = []string{"[X,1]"}
	glueBinarySource = []string{"[S,1]", "[X,2]"}
)

// GlueRule provides S -> X and S -> S X over spans starting at the first word, so any
// sequence of X constituents can be joined left to right.
type GlueRule struct {
	Base
}

func NewGlueRule(spec *Spec) (FeatureFunction, error) {
	if err := spec.fixedScores(1); err != nil {
		return nil, err
	}
	return &GlueRule{Base: NewBase(spec, 1)}, nil
}

func (f *GlueRule) Capabilities() Capability { return CapTableProvider }

// TableLimit is 0: every split point must stay available.
func (f *GlueRule) TableLimit() int { return 0 }

func (f *GlueRule) Lookup(_ phrase.Phrase, s phrase.Span) []*phrase.TargetPhrase {
	if s.Start != 0 {
		return nil
	}
	out := []*phrase.TargetPhrase{f.rule(glueUnarySource, []phrase.Span{s})}
	for k := s.Start; k < s.End; k++ {
		out = append(out, f.rule(glueBinarySource, []phrase.Span{{Start: s.Start, End: k}, {Start: k + 1, End: s.End}}))
	}
	return out
}

func (f *GlueRule) rule(source []string, children []phrase.Span) *phrase.TargetPhrase {
	tp := &phrase.TargetPhrase{
		Words:    source,
		Source:   source,
		LHS:      GoalLabel,
		Children: children,
		Scores:   f.NewScores(),
	}
	tp.Scores.Assign(f.offset, 1)
	return tp
}
