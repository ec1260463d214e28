package decoder

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/teatak/smt/ff"
	"github.com/teatak/smt/phrase"
)

// spanWork is what one cell contributes to a span-length layer before it is committed.
type spanWork struct {
	span     phrase.Span
	hyps     []Hypothesis
	unary    []*phrase.TranslationOption
	rejected int
}

// searchChart fills the cells bottom-up by span length. The candidates of all cells of
// one length only read shorter, finished cells, so they may be computed concurrently;
// they are committed to the arena in span order afterwards.
func (m *Manager) searchChart(ctx context.Context) error {
	n := len(m.source)
	opts := m.sys.Options
	m.cells = make([][]*Cell, n)
	for start := range m.cells {
		m.cells[start] = make([]*Cell, n-start)
		for length := range m.cells[start] {
			m.cells[start][length] = NewCell(phrase.Span{Start: start, End: start + length}, m.arena, &m.stats)
		}
	}

	for length := 1; length <= n; length++ {
		work := make([]spanWork, n-length+1)
		for start := range work {
			work[start].span = phrase.Span{Start: start, End: start + length - 1}
		}
		if opts.ChartWorkers > 1 {
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(opts.ChartWorkers)
			for i := range work {
				w := &work[i]
				g.Go(func() error {
					m.buildCandidates(w)
					return gctx.Err()
				})
			}
			if err := g.Wait(); err != nil {
				return m.failure("search interrupted", fmt.Errorf("%w: %w", ErrBudgetExhausted, err))
			}
		} else {
			for i := range work {
				m.buildCandidates(&work[i])
			}
		}

		for i := range work {
			w := &work[i]
			cell := m.cell(w.span)
			m.stats.Rejected += w.rejected
			for _, h := range w.hyps {
				if err := m.budget(ctx); err != nil {
					return err
				}
				m.stats.Expansions++
				cell.Add(m.arena.Add(h))
			}
			if err := m.applyUnary(ctx, cell, w.unary); err != nil {
				return err
			}
			cell.Prune(opts.StackSize, opts.BeamWidth)
		}
	}

	top := m.cell(phrase.Span{Start: 0, End: n - 1})
	ids := top.Hypotheses(ff.GoalLabel)
	if len(ids) == 0 {
		ids = top.All()
	}
	if len(ids) == 0 {
		return m.failure("no parse covers the whole sentence", nil)
	}
	m.top = append([]int(nil), ids...)
	sortByEstimate(m.arena, m.top)
	return nil
}

func (m *Manager) cell(s phrase.Span) *Cell {
	return m.cells[s.Start][s.End-s.Start]
}

// buildCandidates creates the lexical and non-unary rule hypotheses of w.span and sets
// the unary rules aside. It only reads finished cells.
func (m *Manager) buildCandidates(w *spanWork) {
	final := w.span.Start == 0 && w.span.End == len(m.source)-1
	for _, opt := range m.options.Get(w.span) {
		tp := opt.Target
		if !tp.IsRule() {
			w.hyps = append(w.hyps, m.applyRule(opt, nil, final))
			continue
		}
		if len(tp.Children) == 1 && tp.Children[0] == w.span {
			w.unary = append(w.unary, opt)
			continue
		}
		labels := phrase.NonTerminals(tp.Source)
		lists := make([][]int, len(tp.Children))
		ok := true
		for i, child := range tp.Children {
			lists[i] = m.cell(child).Hypotheses(labels[i].Label)
			if len(lists[i]) == 0 {
				ok = false
				break
			}
		}
		if !ok {
			w.rejected++
			continue
		}
		m.combine(lists, func(children []int) {
			w.hyps = append(w.hyps, m.applyRule(opt, children, final))
		})
	}
}

// combine calls fn for the combinations of one hypothesis per list, best first by the
// summed child estimates, stopping after MaxChartChildren combinations. Lists are
// sorted best first.
func (m *Manager) combine(lists [][]int, fn func(children []int)) {
	limit := m.sys.Options.MaxChartChildren
	score := func(idx []int) float64 {
		total := 0.0
		for i, j := range idx {
			total += m.arena.At(lists[i][j]).Estimate()
		}
		return total
	}
	first := make([]int, len(lists))
	frontier := &comboHeap{{idx: first, score: score(first)}}
	seen := map[string]bool{comboKey(first): true}
	for count := 0; frontier.Len() > 0 && (limit == 0 || count < limit); count++ {
		c := heap.Pop(frontier).(combo)
		children := make([]int, len(lists))
		for i, l := range lists {
			children[i] = l[c.idx[i]]
		}
		fn(children)
		for i := range c.idx {
			if c.idx[i]+1 >= len(lists[i]) {
				continue
			}
			next := append([]int(nil), c.idx...)
			next[i]++
			key := comboKey(next)
			if seen[key] {
				continue
			}
			seen[key] = true
			heap.Push(frontier, combo{idx: next, score: score(next)})
		}
	}
}

// combo is one index vector into the child lists.
type combo struct {
	idx   []int
	score float64
}

// comboHeap pops the highest score first; ties go to the lexicographically smaller
// index vector.
type comboHeap []combo

func (h comboHeap) Len() int { return len(h) }

func (h comboHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	for k := range h[i].idx {
		if h[i].idx[k] != h[j].idx[k] {
			return h[i].idx[k] < h[j].idx[k]
		}
	}
	return false
}

func (h comboHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *comboHeap) Push(x any) { *h = append(*h, x.(combo)) }

func (h *comboHeap) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

func comboKey(idx []int) string {
	var sb strings.Builder
	for i, j := range idx {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(j))
	}
	return sb.String()
}

// applyUnary applies unary rules to the hypotheses committed to cell before the pass.
// A rule never rewrites a label into itself and results are not rewritten again.
func (m *Manager) applyUnary(ctx context.Context, cell *Cell, rules []*phrase.TranslationOption) error {
	before := make(map[string][]int)
	for _, opt := range rules {
		label := phrase.NonTerminals(opt.Target.Source)[0].Label
		if _, ok := before[label]; !ok {
			before[label] = append([]int(nil), cell.Hypotheses(label)...)
		}
	}
	for _, opt := range rules {
		tp := opt.Target
		label := phrase.NonTerminals(tp.Source)[0].Label
		if label == tp.LHS {
			continue
		}
		children := before[label]
		if len(children) == 0 {
			m.stats.Rejected++
			continue
		}
		for _, child := range children {
			if m.arena.At(child).RecombinedInto != NoHypothesis {
				continue
			}
			if err := m.budget(ctx); err != nil {
				return err
			}
			m.stats.Expansions++
			cell.Add(m.arena.Add(m.applyRule(opt, []int{child}, false)))
		}
	}
	return nil
}

// applyRule builds the hypothesis for opt over the given child hypotheses.
func (m *Manager) applyRule(opt *phrase.TranslationOption, children []int, final bool) Hypothesis {
	tp := opt.Target
	scores := tp.Scores.Clone()
	for _, c := range children {
		scores.PlusEquals(m.arena.At(c).Scores)
	}
	ac := &ff.ApplyContext{
		Source: m.source,
		Span:   opt.Span,
		Target: tp,
		Prev:   make([]ff.State, len(children)),
		Final:  final,
		Chart:  true,
	}
	stateful := m.sys.Registry.Stateful()
	states := make([]ff.State, len(stateful))
	for i, sf := range stateful {
		for j, c := range children {
			ac.Prev[j] = m.arena.At(c).States[i]
		}
		states[i] = sf.EvaluateWhenApplied(ac, scores)
	}
	h := Hypothesis{
		Prev:           NoHypothesis,
		RecombinedInto: NoHypothesis,
		Children:       children,
		Option:         opt,
		Span:           opt.Span,
		Label:          tp.LHS,
		Score:          scores.Dot(m.sys.Weights),
		Scores:         scores,
		States:         states,
	}
	h.Fingerprint = fingerprint(h.Label, states)
	return h
}

func sortByEstimate(arena *Arena, ids []int) {
	sort.SliceStable(ids, func(i, j int) bool {
		return arena.At(ids[i]).Estimate() > arena.At(ids[j]).Estimate()
	})
}
