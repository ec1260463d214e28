package phrase

import "math"

// FutureCostTable estimates the cheapest way to translate every span of the sentence.
// Costs are negated scores, so lower is better. Spans nothing can translate cost +Inf.
type FutureCostTable struct {
	n    int
	cost [][]float64
}

// NewFutureCostTable runs the interval DP
//
//	cost[i][j] = min(best(i,j), min_k cost[i][k] + cost[k+1][j])
//
// bottom-up by span length. best reports the cost of the best single option on a span.
func NewFutureCostTable(n int, best func(Span) (float64, bool)) *FutureCostTable {
	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, n-i)
	}
	for length := 1; length <= n; length++ {
		for i := 0; i+length <= n; i++ {
			j := i + length - 1
			c := math.Inf(1)
			if b, ok := best(Span{Start: i, End: j}); ok {
				c = b
			}
			for k := i; k < j; k++ {
				if split := cost[i][k-i] + cost[k+1][j-k-1]; split < c {
					c = split
				}
			}
			cost[i][j-i] = c
		}
	}
	return &FutureCostTable{n: n, cost: cost}
}

// Cost returns the estimate for span s.
func (t *FutureCostTable) Cost(s Span) float64 {
	return t.cost[s.Start][s.End-s.Start]
}

// Remaining sums the estimates of the maximal uncovered intervals of cov.
func (t *FutureCostTable) Remaining(cov Coverage) float64 {
	total := 0.0
	for _, gap := range cov.Gaps() {
		total += t.Cost(gap)
	}
	return total
}
