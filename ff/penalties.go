package ff

import "github.com/teatak/smt/phrase"

// WordPenalty scores minus the number of target words a candidate produces.
type WordPenalty struct {
	Base
}

func NewWordPenalty(spec *Spec) (FeatureFunction, error) {
	if err := spec.fixedScores(1); err != nil {
		return nil, err
	}
	return &WordPenalty{Base: NewBase(spec, 1)}, nil
}

func (f *WordPenalty) EvaluateInIsolation(tp *phrase.TargetPhrase, scores, _ phrase.ScoreVector) {
	scores.Assign(f.offset, -float64(len(tp.Terminals())))
}

// PhrasePenalty scores 1 for every applied phrase or rule.
type PhrasePenalty struct {
	Base
}

func NewPhrasePenalty(spec *Spec) (FeatureFunction, error) {
	if err := spec.fixedScores(1); err != nil {
		return nil, err
	}
	return &PhrasePenalty{Base: NewBase(spec, 1)}, nil
}

func (f *PhrasePenalty) EvaluateInIsolation(_ *phrase.TargetPhrase, scores, _ phrase.ScoreVector) {
	scores.Assign(f.offset, 1)
}

// UnknownWordPenalty scores 1 for a pass-through copy of an untranslatable token.
type UnknownWordPenalty struct {
	Base
}

func NewUnknownWordPenalty(spec *Spec) (FeatureFunction, error) {
	if err := spec.fixedScores(1); err != nil {
		return nil, err
	}
	return &UnknownWordPenalty{Base: NewBase(spec, 1)}, nil
}

func (f *UnknownWordPenalty) EvaluateInIsolation(tp *phrase.TargetPhrase, scores, _ phrase.ScoreVector) {
	if tp.Unknown {
		scores.Assign(f.offset, 1)
	}
}
