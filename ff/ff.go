// Package ff defines the pluggable scoring components of the decoder, the registry that
// builds them from feature lines and lays out their score ranges, and the concrete
// feature functions.
package ff

import (
	"context"

	"github.com/teatak/smt/phrase"
)

// Capability flags declare which optional method sets a feature function implements.
// Callers dispatch on these flags, never on the concrete type.
type Capability uint8

const (
	// CapStateful marks functions implementing StatefulFunction.
	CapStateful Capability = 1 << iota
	// CapTableProvider marks functions implementing TableProvider.
	CapTableProvider
	// CapSourceContext marks functions implementing SourceContextFunction.
	CapSourceContext
)

// Has reports whether every flag of f is set in c.
func (c Capability) Has(f Capability) bool {
	return c&f == f
}

// State is the opaque derivation state a stateful function threads through a
// derivation. Two states with equal keys must behave identically from then on.
type State interface {
	Key() string
}

// FeatureFunction is implemented by every scoring component.
type FeatureFunction interface {
	Name() string
	TypeName() string
	NumScores() int
	// Offset is the start of the function's range in the global score vector.
	Offset() int
	Capabilities() Capability
	Load(ctx context.Context) error
	// EvaluateInIsolation scores a candidate without any derivation context. Stateless
	// functions write their final scores into scores; stateful functions may write a
	// rough estimate into estimate.
	EvaluateInIsolation(tp *phrase.TargetPhrase, scores, estimate phrase.ScoreVector)
}

// ApplyContext describes one application of a candidate during search.
type ApplyContext struct {
	Source phrase.Phrase
	Span   phrase.Span
	Target *phrase.TargetPhrase
	// Prev holds the previous state in phrase-based search, or the children's states
	// (indexed like Target.Children) in chart search.
	Prev []State
	// Final is set when the result covers the whole sentence.
	Final bool
	Chart bool
}

// StatefulFunction scores candidates in the context of the derivation built so far.
type StatefulFunction interface {
	FeatureFunction
	// EmptyState is the state of the initial (empty) phrase-based hypothesis.
	EmptyState(src phrase.Phrase) State
	// EvaluateWhenApplied adds the incremental score into its range of scores and
	// returns the new state.
	EvaluateWhenApplied(ac *ApplyContext, scores phrase.ScoreVector) State
}

// TableProvider supplies candidate target phrases for source spans.
type TableProvider interface {
	FeatureFunction
	// TableLimit caps the candidates kept per span; 0 keeps everything.
	TableLimit() int
	// Lookup returns fresh candidates for span s. Their Scores vectors are sized to the
	// global vector with the provider's range filled in.
	Lookup(src phrase.Phrase, s phrase.Span) []*phrase.TargetPhrase
}

// SourceContextFunction scores a whole span's candidate list against the sentence.
type SourceContextFunction interface {
	FeatureFunction
	EvaluateWithSourceContext(ctx context.Context, src phrase.Phrase, s phrase.Span, targets []*phrase.TargetPhrase) error
}

// Base carries the bookkeeping shared by all feature functions.
type Base struct {
	name      string
	typeName  string
	numScores int
	offset    int
	total     int
}

// NewBase creates the bookkeeping for an instance built from spec.
func NewBase(spec *Spec, numScores int) Base {
	return Base{name: spec.Name(), typeName: spec.Type, numScores: numScores}
}

func (b *Base) Name() string     { return b.name }
func (b *Base) TypeName() string { return b.typeName }
func (b *Base) NumScores() int   { return b.numScores }
func (b *Base) Offset() int      { return b.offset }

// Capabilities defaults to a plain stateless function.
func (b *Base) Capabilities() Capability { return 0 }

// Load is a no-op by default.
func (b *Base) Load(context.Context) error { return nil }

// EvaluateInIsolation is a no-op by default.
func (b *Base) EvaluateInIsolation(*phrase.TargetPhrase, phrase.ScoreVector, phrase.ScoreVector) {}

// NewScores returns a zero global score vector.
func (b *Base) NewScores() phrase.ScoreVector {
	return phrase.NewScoreVector(b.total)
}

// Range returns the function's own slice of v.
func (b *Base) Range(v phrase.ScoreVector) []float64 {
	return v.Range(b.offset, b.numScores)
}

func (b *Base) setLayout(offset, total int) {
	b.offset = offset
	b.total = total
}

type layouter interface {
	setLayout(offset, total int)
}
