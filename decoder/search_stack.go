package decoder

import (
	"context"
	"strconv"

	"github.com/teatak/smt/ff"
	"github.com/teatak/smt/phrase"
)

// searchStack runs phrase-based beam search. Stack i holds the hypotheses covering i
// source words; stacks are completed and pruned strictly in order.
func (m *Manager) searchStack(ctx context.Context) error {
	n := len(m.source)
	opts := m.sys.Options
	m.stacks = make([]*Stack, n+1)
	for i := range m.stacks {
		m.stacks[i] = NewStack(m.arena, &m.stats)
	}
	m.stacks[0].Add(m.arena.Add(m.initial()))

	for i := 0; i < n; i++ {
		m.stacks[i].Prune(opts.StackSize, opts.BeamWidth)
		for _, id := range m.stacks[i].Hypotheses() {
			h := m.arena.At(id)
			for start := 0; start < n; start++ {
				if h.Coverage.IsSet(start) {
					continue
				}
				for end := start; end < n && end-start < opts.MaxPhraseLength; end++ {
					if h.Coverage.IsSet(end) {
						break
					}
					for _, opt := range m.options.Get(phrase.Span{Start: start, End: end}) {
						if err := m.budget(ctx); err != nil {
							return err
						}
						m.stats.Expansions++
						next, ok := m.expand(h, opt)
						if !ok {
							m.stats.Rejected++
							continue
						}
						m.stacks[next.Coverage.Count()].Add(m.arena.Add(next))
					}
				}
			}
		}
	}

	last := m.stacks[n]
	last.Prune(opts.StackSize, opts.BeamWidth)
	if last.Len() == 0 {
		return m.failure("no hypothesis covers the whole sentence", nil)
	}
	m.top = append([]int(nil), last.Hypotheses()...)
	return nil
}

// initial creates the empty hypothesis.
func (m *Manager) initial() Hypothesis {
	reg := m.sys.Registry
	cov := phrase.NewCoverage(len(m.source))
	states := make([]ff.State, len(reg.Stateful()))
	for i, sf := range reg.Stateful() {
		states[i] = sf.EmptyState(m.source)
	}
	h := Hypothesis{
		Prev:           NoHypothesis,
		RecombinedInto: NoHypothesis,
		Coverage:       cov,
		Span:           phrase.Span{Start: -1, End: -1},
		Scores:         phrase.NewScoreVector(reg.NumScores()),
		FutureScore:    -m.options.FutureCosts().Remaining(cov),
		States:         states,
	}
	h.Fingerprint = m.stackFingerprint(&h)
	return h
}

// expand applies opt to h. It reports false when opt overlaps the coverage of h or
// breaks the distortion limit.
func (m *Manager) expand(h *Hypothesis, opt *phrase.TranslationOption) (Hypothesis, bool) {
	s := opt.Span
	if h.Coverage.Overlaps(s) {
		return Hypothesis{}, false
	}
	if limit := m.sys.Options.DistortionLimit; limit >= 0 {
		if abs(h.Span.End+1-s.Start) > limit {
			return Hypothesis{}, false
		}
		// the first gap must stay reachable from the end of s
		if gap := h.Coverage.FirstGap(); s.Start > gap && s.End+1-gap > limit {
			return Hypothesis{}, false
		}
	}

	cov := h.Coverage.With(s)
	scores := h.Scores.Clone()
	scores.PlusEquals(opt.Target.Scores)
	ac := &ff.ApplyContext{
		Source: m.source,
		Span:   s,
		Target: opt.Target,
		Prev:   make([]ff.State, 1),
		Final:  cov.Full(),
	}
	stateful := m.sys.Registry.Stateful()
	states := make([]ff.State, len(stateful))
	for i, sf := range stateful {
		ac.Prev[0] = h.States[i]
		states[i] = sf.EvaluateWhenApplied(ac, scores)
	}

	next := Hypothesis{
		Prev:           h.ID,
		RecombinedInto: NoHypothesis,
		Option:         opt,
		Coverage:       cov,
		Span:           s,
		Score:          scores.Dot(m.sys.Weights),
		Scores:         scores,
		FutureScore:    -m.options.FutureCosts().Remaining(cov),
		States:         states,
	}
	next.Fingerprint = m.stackFingerprint(&next)
	return next, true
}

// stackFingerprint is the coverage plus every state, plus the last end position while it
// still constrains later jumps.
func (m *Manager) stackFingerprint(h *Hypothesis) string {
	key := h.Coverage.Key()
	if m.sys.Options.DistortionLimit >= 0 && !h.Coverage.Full() {
		key += ":" + strconv.Itoa(h.Span.End)
	}
	return fingerprint(key, h.States)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
