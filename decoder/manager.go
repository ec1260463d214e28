// Package decoder searches for the best translation of a sentence: it builds the
// translation options, runs phrase-based stack search or chart search over a
// per-sentence hypothesis arena and extracts the best derivation or an N-best list.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teatak/smt/ff"
	"github.com/teatak/smt/phrase"
)

// Stats counts the work done for one sentence.
type Stats struct {
	Options    int
	Created    int
	Recombined int
	Pruned     int
	Expansions int
	Rejected   int
	Duration   time.Duration
}

// System is the shared, read-only model a Manager decodes with.
type System struct {
	Registry *ff.Registry
	Weights  phrase.ScoreVector
	Options  Options
	Logger   *slog.Logger
}

// NewSystem checks that weights match the registry's score layout and opts are valid.
func NewSystem(reg *ff.Registry, weights phrase.ScoreVector, opts Options, logger *slog.Logger) (*System, error) {
	if len(weights) != reg.NumScores() {
		return nil, &ff.ConfigError{Key: "weights", Reason: fmt.Sprintf("got %d weights, want %d", len(weights), reg.NumScores())}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &System{Registry: reg, Weights: weights, Options: opts, Logger: logger}, nil
}

// Manager decodes one sentence. It owns the sentence's options and hypotheses and must
// not be shared between goroutines.
type Manager struct {
	sys     *System
	source  phrase.Phrase
	options *phrase.OptionCollection
	arena   *Arena
	stats   Stats

	stacks []*Stack
	cells  [][]*Cell
	// top lists the complete hypotheses, best first.
	top     []int
	decoded bool
}

// NewManager prepares a Manager for the tokenized sentence source.
func (s *System) NewManager(source []string) *Manager {
	return &Manager{sys: s, source: phrase.Phrase(source), arena: &Arena{}}
}

// Decode runs the search and returns the best derivation. A sentence without a complete
// derivation yields a *SearchFailure.
func (m *Manager) Decode(ctx context.Context) (*Derivation, error) {
	if m.decoded {
		return nil, errors.New("manager already used")
	}
	m.decoded = true
	opts := m.sys.Options
	start := time.Now()
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	err := m.search(ctx)
	m.stats.Duration = time.Since(start)
	m.stats.Created = m.arena.Len()
	recordMetrics(opts.Algorithm, m.stats, err != nil)
	if err != nil {
		m.sys.Logger.Debug("search failed", slog.String("source", m.source.String()), slog.Any("error", err))
		return nil, err
	}
	m.sys.Logger.Debug("search done",
		slog.String("algorithm", string(opts.Algorithm)),
		slog.Int("words", len(m.source)),
		slog.Int("options", m.stats.Options),
		slog.Int("hypotheses", m.stats.Created),
		slog.Int("recombined", m.stats.Recombined),
		slog.Int("pruned", m.stats.Pruned),
		slog.Duration("took", m.stats.Duration))
	return m.Best()
}

func (m *Manager) search(ctx context.Context) error {
	if len(m.source) == 0 {
		return nil
	}
	if err := m.collectOptions(ctx); err != nil {
		return err
	}
	if m.sys.Options.Algorithm == AlgorithmChart {
		return m.searchChart(ctx)
	}
	return m.searchStack(ctx)
}

// collectOptions queries every provider for every span, prunes each provider's
// candidates, scores them in isolation and in source context and adds unknown-word
// fallbacks.
func (m *Manager) collectOptions(ctx context.Context) error {
	n := len(m.source)
	opts := m.sys.Options
	reg := m.sys.Registry
	chart := opts.Algorithm == AlgorithmChart
	m.options = phrase.NewOptionCollection(n)

	for start := 0; start < n; start++ {
		for end := start; end < n; end++ {
			span := phrase.Span{Start: start, End: end}
			if !chart && span.Len() > opts.MaxPhraseLength {
				break
			}
			for _, p := range reg.Providers() {
				cands := p.Lookup(m.source, span)
				if !chart {
					cands = dropRules(cands)
				}
				if len(cands) == 0 {
					continue
				}
				set := phrase.NewTargetPhraseSet(len(cands))
				for _, tp := range cands {
					m.scoreIsolated(tp)
					if err := set.Add(tp); err != nil {
						return err
					}
				}
				set.SortAndPrune(p.TableLimit())
				if err := m.scoreInContext(ctx, span, set.Phrases()); err != nil {
					return err
				}
				for _, tp := range set.Phrases() {
					m.options.Add(&phrase.TranslationOption{Span: span, Target: tp})
				}
			}
		}
	}

	for i := 0; i < n && opts.UnknownWords == UnknownPassthrough; i++ {
		span := phrase.Span{Start: i, End: i}
		if hasPhrase(m.options.Get(span)) {
			continue
		}
		tp := &phrase.TargetPhrase{
			Words:   []string{m.source[i]},
			LHS:     ff.XLabel,
			Unknown: true,
			Scores:  phrase.NewScoreVector(reg.NumScores()),
		}
		m.scoreIsolated(tp)
		if err := m.scoreInContext(ctx, span, []*phrase.TargetPhrase{tp}); err != nil {
			return err
		}
		m.options.Add(&phrase.TranslationOption{Span: span, Target: tp})
	}
	m.stats.Options = m.options.Len()

	if chart {
		return nil
	}
	if missing := m.options.Uncoverable(); len(missing) > 0 {
		words := make([]string, len(missing))
		for i, pos := range missing {
			words[i] = m.source[pos]
		}
		return m.failure("no translation option for " + strings.Join(words, ", "), nil)
	}
	m.options.BuildFutureCosts()
	return nil
}

func dropRules(cands []*phrase.TargetPhrase) []*phrase.TargetPhrase {
	out := cands[:0]
	for _, tp := range cands {
		if !tp.IsRule() {
			out = append(out, tp)
		}
	}
	return out
}

func hasPhrase(opts []*phrase.TranslationOption) bool {
	for _, o := range opts {
		if !o.Target.IsRule() {
			return true
		}
	}
	return false
}

func (m *Manager) scoreIsolated(tp *phrase.TargetPhrase) {
	reg := m.sys.Registry
	estimate := phrase.NewScoreVector(reg.NumScores())
	for _, f := range reg.Functions() {
		f.EvaluateInIsolation(tp, tp.Scores, estimate)
	}
	tp.Score = tp.Scores.Dot(m.sys.Weights)
	tp.Estimate = estimate.Dot(m.sys.Weights)
}

func (m *Manager) scoreInContext(ctx context.Context, span phrase.Span, targets []*phrase.TargetPhrase) error {
	fns := m.sys.Registry.SourceContext()
	if len(fns) == 0 {
		return nil
	}
	for _, f := range fns {
		if err := f.EvaluateWithSourceContext(ctx, m.source, span, targets); err != nil {
			err = fmt.Errorf("%s: %w", f.Name(), err)
			if ctx.Err() != nil {
				return m.failure("search interrupted", fmt.Errorf("%w: %w", ErrBudgetExhausted, err))
			}
			return err
		}
	}
	for _, tp := range targets {
		tp.Score = tp.Scores.Dot(m.sys.Weights)
	}
	return nil
}

func (m *Manager) failure(reason string, err error) error {
	return &SearchFailure{Source: m.source.String(), Reason: reason, Err: err}
}

// budget reports a budget failure once the expansion limit is reached or ctx is done.
func (m *Manager) budget(ctx context.Context) error {
	if limit := m.sys.Options.MaxExpansions; limit > 0 && m.stats.Expansions >= limit {
		return m.failure("expansion limit "+strconv.Itoa(limit)+" reached", ErrBudgetExhausted)
	}
	if m.stats.Expansions%64 == 0 {
		if err := ctx.Err(); err != nil {
			return m.failure("search interrupted", fmt.Errorf("%w: %w", ErrBudgetExhausted, err))
		}
	}
	return nil
}

// Best returns the best derivation found by Decode.
func (m *Manager) Best() (*Derivation, error) {
	if !m.decoded {
		return nil, errors.New("manager has not decoded")
	}
	if len(m.source) == 0 {
		return &Derivation{Scores: phrase.NewScoreVector(m.sys.Registry.NumScores())}, nil
	}
	if len(m.top) == 0 {
		return nil, m.failure("no complete hypothesis", nil)
	}
	return m.derivation(m.top[0], noSubstitution), nil
}

// NBest returns up to n distinct derivations, best first: every complete hypothesis plus
// every derivation obtained by swapping one hypothesis of it for a recombined one.
func (m *Manager) NBest(n int) []*Derivation {
	if len(m.source) == 0 || len(m.top) == 0 {
		if d, err := m.Best(); err == nil {
			return []*Derivation{d}
		}
		return nil
	}
	type candidate struct {
		top   int
		sub   substitution
		score float64
	}
	var cands []candidate
	for _, top := range m.top {
		h := m.arena.At(top)
		cands = append(cands, candidate{top: top, sub: noSubstitution, score: h.Score})
		for _, id := range m.nodes(top) {
			x := m.arena.At(id)
			for _, arc := range x.Arcs {
				a := m.arena.At(arc)
				cands = append(cands, candidate{top: top, sub: substitution{from: id, to: arc}, score: h.Score - x.Score + a.Score})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	seen := make(map[string]bool)
	var out []*Derivation
	for _, c := range cands {
		if len(out) == n {
			break
		}
		key := m.pathKey(c.top, c.sub)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m.derivation(c.top, c.sub))
	}
	return out
}

// nodes lists the hypotheses of the derivation rooted at top.
func (m *Manager) nodes(top int) []int {
	var out []int
	if m.sys.Options.Algorithm != AlgorithmChart {
		for id := top; id != NoHypothesis; id = m.arena.At(id).Prev {
			out = append(out, id)
		}
		return out
	}
	var walk func(id int)
	walk = func(id int) {
		out = append(out, id)
		for _, c := range m.arena.At(id).Children {
			walk(c)
		}
	}
	walk(top)
	return out
}

func (m *Manager) pathKey(top int, sub substitution) string {
	var sb strings.Builder
	var walk func(id int)
	walk = func(id int) {
		id = sub.apply(id)
		h := m.arena.At(id)
		sb.WriteString(strconv.Itoa(id))
		sb.WriteByte(' ')
		if h.Prev != NoHypothesis {
			walk(h.Prev)
		}
		for _, c := range h.Children {
			walk(c)
		}
	}
	walk(top)
	return sb.String()
}

// Stats returns the search statistics of the last Decode.
func (m *Manager) Stats() Stats {
	return m.stats
}

// Options returns the translation options built for the sentence.
func (m *Manager) Options() *phrase.OptionCollection {
	return m.options
}

// Release frees every hypothesis and option of the sentence.
func (m *Manager) Release() {
	m.arena.Reset()
	m.stacks = nil
	m.cells = nil
	m.top = nil
	m.options = nil
}
