package decoder

import (
	"strings"

	"github.com/teatak/smt/phrase"
)

// Step is one applied translation option of a derivation.
type Step struct {
	Span   phrase.Span
	Target *phrase.TargetPhrase
}

// Derivation is a complete translation with its applied options.
type Derivation struct {
	// Steps are in application order: left to right over the target for phrase-based
	// search, pre-order over the rule tree for chart search.
	Steps  []Step
	Words  []string
	Score  float64
	Scores phrase.ScoreVector
}

func (d *Derivation) String() string {
	return strings.Join(d.Words, " ")
}

// substitution replaces hypothesis from by to while walking a derivation.
type substitution struct {
	from, to int
}

func (s substitution) apply(id int) int {
	if id == s.from {
		return s.to
	}
	return id
}

var noSubstitution = substitution{from: NoHypothesis, to: NoHypothesis}

// derivation reads the derivation ending at top, following sub.
func (m *Manager) derivation(top int, sub substitution) *Derivation {
	h := m.arena.At(sub.apply(top))
	d := &Derivation{Score: h.Score, Scores: h.Scores.Clone()}
	if sub.from != NoHypothesis && sub.from != top {
		// equal fingerprints give equal increments above the substituted node
		from, to := m.arena.At(sub.from), m.arena.At(sub.to)
		d.Score += to.Score - from.Score
		for i := range d.Scores {
			d.Scores[i] += to.Scores[i] - from.Scores[i]
		}
	}
	top = h.ID
	if m.sys.Options.Algorithm == AlgorithmChart {
		m.walkChart(top, sub, d)
		return d
	}
	var chain []*Hypothesis
	for id := top; id != NoHypothesis; id = sub.apply(m.arena.At(id).Prev) {
		if hyp := m.arena.At(id); hyp.Option != nil {
			chain = append(chain, hyp)
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		opt := chain[i].Option
		d.Steps = append(d.Steps, Step{Span: opt.Span, Target: opt.Target})
		d.Words = append(d.Words, opt.Target.Words...)
	}
	return d
}

func (m *Manager) walkChart(id int, sub substitution, d *Derivation) {
	h := m.arena.At(id)
	tp := h.Option.Target
	d.Steps = append(d.Steps, Step{Span: h.Span, Target: tp})
	for _, w := range tp.Words {
		if nt, ok := phrase.ParseNonTerminal(w); ok {
			m.walkChart(sub.apply(h.Children[nt.Index-1]), sub, d)
			continue
		}
		d.Words = append(d.Words, w)
	}
}
