package ff

import (
	"context"
	"fmt"
	"strings"

	"github.com/teatak/smt/lm"
	"github.com/teatak/smt/phrase"
)

// NGramLM scores target fluency with a backoff n-gram model.
type NGramLM struct {
	Base
	path  string
	order int
	model *lm.Model
}

// phraseLMState is the last order-1 target words of a phrase-based hypothesis.
type phraseLMState struct {
	words []string
}

func (s phraseLMState) Key() string {
	return strings.Join(s.words, " ")
}

// chartLMState summarizes a constituent for chart search. The first order-1 words are
// not scored yet because their history lies outside the constituent.
type chartLMState struct {
	left  []string
	right []string
	// long means the yield has at least order-1 words, so right is a full history.
	long bool
	// final means the yield is scored with sentence boundaries.
	final bool
}

func (s chartLMState) Key() string {
	return fmt.Sprintf("%s|%s|%t|%t", strings.Join(s.left, " "), strings.Join(s.right, " "), s.long, s.final)
}

func NewNGramLM(spec *Spec) (FeatureFunction, error) {
	if err := spec.fixedScores(1); err != nil {
		return nil, err
	}
	path, err := spec.Require("path")
	if err != nil {
		return nil, err
	}
	order, err := spec.Int("order", 3)
	if err != nil {
		return nil, err
	}
	if order < 1 {
		return nil, &ConfigError{Line: spec.Line, Key: "order", Reason: "must be at least 1"}
	}
	return &NGramLM{Base: NewBase(spec, 1), path: path, order: order}, nil
}

// NewNGramLMFromModel wraps an already loaded model.
func NewNGramLMFromModel(spec *Spec, m *lm.Model) *NGramLM {
	return &NGramLM{Base: NewBase(spec, 1), order: m.Order(), model: m}
}

func (f *NGramLM) Capabilities() Capability { return CapStateful }

func (f *NGramLM) Load(context.Context) error {
	if f.model != nil {
		return nil
	}
	m, err := lm.Load(f.path)
	if err != nil {
		return err
	}
	if m.Order() < f.order {
		f.order = m.Order()
	}
	f.model = m
	return nil
}

func (f *NGramLM) history(words []string) []string {
	if n := f.order - 1; len(words) > n {
		return words[len(words)-n:]
	}
	return words
}

// EvaluateInIsolation estimates each run of target terminals without outside context.
func (f *NGramLM) EvaluateInIsolation(tp *phrase.TargetPhrase, _, estimate phrase.ScoreVector) {
	total := 0.0
	var ctx []string
	for _, w := range tp.Words {
		if _, ok := phrase.ParseNonTerminal(w); ok {
			ctx = nil
			continue
		}
		total += f.model.LogProb(ctx, w)
		ctx = f.history(append(ctx, w))
	}
	estimate.Assign(f.offset, total)
}

func (f *NGramLM) EmptyState(phrase.Phrase) State {
	return phraseLMState{words: []string{lm.BOS}}
}

func (f *NGramLM) EvaluateWhenApplied(ac *ApplyContext, scores phrase.ScoreVector) State {
	if ac.Chart {
		return f.evaluateChart(ac, scores)
	}
	var ctx []string
	if len(ac.Prev) > 0 {
		ctx = append(ctx, ac.Prev[0].(phraseLMState).words...)
	}
	total := 0.0
	for _, w := range ac.Target.Words {
		total += f.model.LogProb(ctx, w)
		ctx = f.history(append(ctx, w))
	}
	if ac.Final {
		total += f.model.LogProb(ctx, lm.EOS)
	}
	f.Range(scores)[0] += total
	return phraseLMState{words: append([]string(nil), ctx...)}
}

func (f *NGramLM) evaluateChart(ac *ApplyContext, scores phrase.ScoreVector) State {
	n := f.order - 1
	var (
		left  []string
		ctx   []string
		size  int // yield words seen, saturating at n
		total float64
		final bool
	)
	push := func(w string) {
		if size < n {
			left = append(left, w)
			size++
		} else {
			total += f.model.LogProb(ctx, w)
		}
		ctx = f.history(append(ctx, w))
	}
	for _, w := range ac.Target.Words {
		nt, ok := phrase.ParseNonTerminal(w)
		if !ok {
			push(w)
			continue
		}
		child := ac.Prev[nt.Index-1].(chartLMState)
		if child.final {
			left = append(left, child.left...)
			ctx = append([]string(nil), child.right...)
			size = n
			final = true
			continue
		}
		for _, cw := range child.left {
			push(cw)
		}
		if child.long {
			ctx = append([]string(nil), child.right...)
			size = n
		}
	}
	if ac.Final && !final {
		bos := []string{lm.BOS}
		total += f.model.ScoreSequence(bos, left)
		if size < n {
			ctx = f.history(append(bos, ctx...))
		}
		total += f.model.LogProb(ctx, lm.EOS)
		final = true
	}
	f.Range(scores)[0] += total
	return chartLMState{left: left, right: append([]string(nil), ctx...), long: size >= n, final: final}
}
