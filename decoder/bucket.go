package decoder

import (
	"sort"

	"github.com/teatak/smt/phrase"
)

// bucket holds the live hypotheses of one stack or cell label. Hypotheses with equal
// fingerprints are recombined on insertion.
type bucket struct {
	arena *Arena
	stats *Stats
	ids   []int
	index map[string]int // fingerprint -> position in ids
}

func newBucket(arena *Arena, stats *Stats) *bucket {
	return &bucket{arena: arena, stats: stats, index: make(map[string]int)}
}

// add inserts hypothesis id. It reports whether id is live afterwards. The one with
// the higher estimate survives a recombination; on a tie the earlier one stays.
func (b *bucket) add(id int) bool {
	h := b.arena.At(id)
	pos, ok := b.index[h.Fingerprint]
	if !ok {
		b.index[h.Fingerprint] = len(b.ids)
		b.ids = append(b.ids, id)
		return true
	}
	b.stats.Recombined++
	old := b.arena.At(b.ids[pos])
	if h.Estimate() > old.Estimate() {
		old.RecombinedInto = h.ID
		h.Arcs = append(append(h.Arcs, old.ID), old.Arcs...)
		old.Arcs = nil
		b.ids[pos] = h.ID
		return true
	}
	h.RecombinedInto = old.ID
	old.Arcs = append(old.Arcs, h.ID)
	return false
}

// prune sorts the live hypotheses best first, then keeps at most limit of them
// (0 = all) and drops those more than beam below the best (beam < 0 disables it).
func (b *bucket) prune(limit int, beam float64) {
	sort.Slice(b.ids, func(i, j int) bool {
		hi, hj := b.arena.At(b.ids[i]), b.arena.At(b.ids[j])
		if hi.Estimate() != hj.Estimate() {
			return hi.Estimate() > hj.Estimate()
		}
		return hi.ID < hj.ID
	})
	keep := len(b.ids)
	if limit > 0 && keep > limit {
		keep = limit
	}
	if beam >= 0 && keep > 0 {
		threshold := b.arena.At(b.ids[0]).Estimate() - beam
		for i := 1; i < keep; i++ {
			if b.arena.At(b.ids[i]).Estimate() < threshold {
				keep = i
				break
			}
		}
	}
	for _, id := range b.ids[keep:] {
		h := b.arena.At(id)
		h.Pruned = true
		delete(b.index, h.Fingerprint)
		b.stats.Pruned++
	}
	b.ids = b.ids[:keep]
	for i, id := range b.ids {
		b.index[b.arena.At(id).Fingerprint] = i
	}
}

func (b *bucket) best() int {
	bestID := NoHypothesis
	for _, id := range b.ids {
		if bestID == NoHypothesis || b.arena.At(id).Estimate() > b.arena.At(bestID).Estimate() {
			bestID = id
		}
	}
	return bestID
}

// Stack holds the phrase-based hypotheses covering the same number of source words.
type Stack struct {
	b *bucket
}

// NewStack creates an empty stack over arena.
func NewStack(arena *Arena, stats *Stats) *Stack {
	return &Stack{b: newBucket(arena, stats)}
}

// Add inserts a hypothesis stored in the arena, recombining it with an equivalent one.
func (s *Stack) Add(id int) bool { return s.b.add(id) }

// Prune applies histogram and threshold pruning. Call it once the stack is complete.
func (s *Stack) Prune(limit int, beam float64) { s.b.prune(limit, beam) }

// Hypotheses returns the live hypotheses; best first after Prune.
func (s *Stack) Hypotheses() []int { return s.b.ids }

// Len returns the number of live hypotheses.
func (s *Stack) Len() int { return len(s.b.ids) }

// Best returns the live hypothesis with the highest estimate, or NoHypothesis.
func (s *Stack) Best() int { return s.b.best() }

// Cell holds the chart hypotheses of one source span, one bucket per label.
type Cell struct {
	Span   phrase.Span
	arena  *Arena
	stats  *Stats
	labels map[string]*bucket
}

// NewCell creates an empty cell for span.
func NewCell(span phrase.Span, arena *Arena, stats *Stats) *Cell {
	return &Cell{Span: span, arena: arena, stats: stats, labels: make(map[string]*bucket)}
}

// Add inserts a hypothesis stored in the arena into the bucket of its label.
func (c *Cell) Add(id int) bool {
	label := c.arena.At(id).Label
	b, ok := c.labels[label]
	if !ok {
		b = newBucket(c.arena, c.stats)
		c.labels[label] = b
	}
	return b.add(id)
}

// Prune prunes every label bucket independently.
func (c *Cell) Prune(limit int, beam float64) {
	for _, b := range c.labels {
		b.prune(limit, beam)
	}
}

// Hypotheses returns the live hypotheses with the given label; best first after Prune.
func (c *Cell) Hypotheses(label string) []int {
	if b, ok := c.labels[label]; ok {
		return b.ids
	}
	return nil
}

// All returns every live hypothesis of the cell.
func (c *Cell) All() []int {
	var out []int
	for _, label := range c.Labels() {
		out = append(out, c.labels[label].ids...)
	}
	return out
}

// Labels returns the labels present, sorted.
func (c *Cell) Labels() []string {
	out := make([]string, 0, len(c.labels))
	for label := range c.labels {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of live hypotheses.
func (c *Cell) Len() int {
	n := 0
	for _, b := range c.labels {
		n += len(b.ids)
	}
	return n
}

// Best returns the best hypothesis with the given label, or over all labels when label
// is empty.
func (c *Cell) Best(label string) int {
	if label != "" {
		if b, ok := c.labels[label]; ok {
			return b.best()
		}
		return NoHypothesis
	}
	bestID := NoHypothesis
	for _, l := range c.Labels() {
		id := c.labels[l].best()
		if id == NoHypothesis {
			continue
		}
		if bestID == NoHypothesis || c.arena.At(id).Estimate() > c.arena.At(bestID).Estimate() {
			bestID = id
		}
	}
	return bestID
}
