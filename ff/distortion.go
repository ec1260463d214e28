package ff

import (
	"strconv"

	"github.com/teatak/smt/phrase"
)

// Distortion penalizes reordering by the jump between consecutive source spans.
// It only scores phrase-based search.
type Distortion struct {
	Base
}

type distortionState struct {
	end int
}

func (s distortionState) Key() string {
	return strconv.Itoa(s.end)
}

func NewDistortion(spec *Spec) (FeatureFunction, error) {
	if err := spec.fixedScores(1); err != nil {
		return nil, err
	}
	return &Distortion{Base: NewBase(spec, 1)}, nil
}

func (f *Distortion) Capabilities() Capability { return CapStateful }

func (f *Distortion) EmptyState(phrase.Phrase) State {
	return distortionState{end: -1}
}

func (f *Distortion) EvaluateWhenApplied(ac *ApplyContext, scores phrase.ScoreVector) State {
	if ac.Chart {
		return distortionState{end: -1}
	}
	prev := -1
	if len(ac.Prev) > 0 {
		prev = ac.Prev[0].(distortionState).end
	}
	d := -abs(prev + 1 - ac.Span.Start)
	if ac.Final {
		d -= abs(len(ac.Source) - (ac.Span.End + 1))
	}
	f.Range(scores)[0] += float64(d)
	return distortionState{end: ac.Span.End}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
