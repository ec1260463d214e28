package ff

import (
	"context"
	"math"

	"github.com/teatak/smt/classifier"
	"github.com/teatak/smt/phrase"
)

// classifierFloor bounds the log of a zero probability.
const classifierFloor = -100.0

// DiscriminativeClassifier scores every candidate of a span against the sentence
// context. Predictions use handles from a bounded pool.
type DiscriminativeClassifier struct {
	Base
	path       string
	poolSize   int
	model      *classifier.Model
	normalizer classifier.Normalizer
	pool       *classifier.Pool
}

func NewDiscriminativeClassifier(spec *Spec) (FeatureFunction, error) {
	if err := spec.fixedScores(1); err != nil {
		return nil, err
	}
	path, err := spec.Require("path")
	if err != nil {
		return nil, err
	}
	size, err := spec.Int("pool", 4)
	if err != nil {
		return nil, err
	}
	loss, _ := spec.Get("loss")
	normalizer, err := classifier.NewNormalizer(loss)
	if err != nil {
		return nil, &ConfigError{Line: spec.Line, Key: "loss", Reason: err.Error()}
	}
	return &DiscriminativeClassifier{
		Base:       NewBase(spec, 1),
		path:       path,
		poolSize:   size,
		normalizer: normalizer,
	}, nil
}

// NewDiscriminativeClassifierFromModel wraps an in-memory model.
func NewDiscriminativeClassifierFromModel(spec *Spec, m *classifier.Model, n classifier.Normalizer, poolSize int) *DiscriminativeClassifier {
	return &DiscriminativeClassifier{Base: NewBase(spec, 1), poolSize: poolSize, model: m, normalizer: n}
}

func (f *DiscriminativeClassifier) Capabilities() Capability { return CapSourceContext }

func (f *DiscriminativeClassifier) Load(context.Context) error {
	if f.model == nil {
		m := classifier.NewModel()
		if err := m.Load(f.path); err != nil {
			return err
		}
		f.model = m
	}
	f.pool = classifier.NewPool(f.model, f.poolSize)
	return nil
}

// Pool exposes the predictor pool.
func (f *DiscriminativeClassifier) Pool() *classifier.Pool {
	return f.pool
}

func (f *DiscriminativeClassifier) EvaluateWithSourceContext(ctx context.Context, src phrase.Phrase, s phrase.Span, targets []*phrase.TargetPhrase) error {
	if len(targets) == 0 {
		return nil
	}
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	words := make([][]string, len(targets))
	for i, tp := range targets {
		words[i] = tp.Terminals()
	}
	losses := h.Losses(src, s.Start, s.End, words)
	f.normalizer.Normalize(losses)
	for i, tp := range targets {
		score := classifierFloor
		if losses[i] > 0 {
			score = math.Max(math.Log(losses[i]), classifierFloor)
		}
		tp.Scores.Assign(f.offset, score)
	}
	return nil
}
