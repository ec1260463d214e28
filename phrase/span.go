package phrase

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Span is an inclusive range [Start,End] of source positions.
type Span struct {
	Start int
	End   int
}

// Len returns the number of positions covered by the span.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d]", s.Start, s.End)
}

// Coverage is a bit-vector over the source sentence marking translated positions.
// A Coverage value is never mutated; With returns a new vector.
type Coverage struct {
	n    int
	bits []uint64
}

// NewCoverage returns an empty coverage for a sentence of n tokens.
func NewCoverage(n int) Coverage {
	return Coverage{n: n, bits: make([]uint64, (n+63)/64)}
}

// Len returns the sentence length the vector was built for.
func (c Coverage) Len() int {
	return c.n
}

// IsSet reports whether position i is covered.
func (c Coverage) IsSet(i int) bool {
	return c.bits[i/64]&(1<<(uint(i)%64)) != 0
}

// Count returns the number of covered positions.
func (c Coverage) Count() int {
	total := 0
	for _, w := range c.bits {
		total += bits.OnesCount64(w)
	}
	return total
}

// Full reports whether every position is covered.
func (c Coverage) Full() bool {
	return c.Count() == c.n
}

// Overlaps reports whether any position of s is already covered.
func (c Coverage) Overlaps(s Span) bool {
	for i := s.Start; i <= s.End; i++ {
		if c.IsSet(i) {
			return true
		}
	}
	return false
}

// With returns a copy of c with every position of s set.
func (c Coverage) With(s Span) Coverage {
	out := Coverage{n: c.n, bits: make([]uint64, len(c.bits))}
	copy(out.bits, c.bits)
	for i := s.Start; i <= s.End; i++ {
		out.bits[i/64] |= 1 << (uint(i) % 64)
	}
	return out
}

// FirstGap returns the leftmost uncovered position, or -1 when full.
func (c Coverage) FirstGap() int {
	for i := 0; i < c.n; i++ {
		if !c.IsSet(i) {
			return i
		}
	}
	return -1
}

// Gaps returns the maximal uncovered intervals, left to right.
func (c Coverage) Gaps() []Span {
	var gaps []Span
	start := -1
	for i := 0; i < c.n; i++ {
		if c.IsSet(i) {
			if start >= 0 {
				gaps = append(gaps, Span{Start: start, End: i - 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		gaps = append(gaps, Span{Start: start, End: c.n - 1})
	}
	return gaps
}

// Key returns a compact string usable as a map key.
func (c Coverage) Key() string {
	var sb strings.Builder
	for i, w := range c.bits {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(w, 36))
	}
	return sb.String()
}

func (c Coverage) String() string {
	var sb strings.Builder
	for i := 0; i < c.n; i++ {
		if c.IsSet(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
