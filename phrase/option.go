package phrase

// TranslationOption is a candidate for one source span together with its precomputed
// scores. Immutable once the OptionCollection is built.
type TranslationOption struct {
	Span   Span
	Target *TargetPhrase
	// RemainingCost is the future cost of everything outside Span on an empty coverage.
	RemainingCost float64
}

// Score returns the weighted stateless score of the option.
func (o *TranslationOption) Score() float64 {
	return o.Target.Score
}

// OptionCollection owns every TranslationOption built for one sentence.
type OptionCollection struct {
	n       int
	options [][][]*TranslationOption
	future  *FutureCostTable
}

// NewOptionCollection returns an empty collection for a sentence of n tokens.
func NewOptionCollection(n int) *OptionCollection {
	options := make([][][]*TranslationOption, n)
	for start := range options {
		options[start] = make([][]*TranslationOption, n-start)
	}
	return &OptionCollection{n: n, options: options}
}

// Add stores opt under its span.
func (c *OptionCollection) Add(opt *TranslationOption) {
	s := opt.Span
	c.options[s.Start][s.End-s.Start] = append(c.options[s.Start][s.End-s.Start], opt)
}

// Get returns the options for exactly span s.
func (c *OptionCollection) Get(s Span) []*TranslationOption {
	if s.Start < 0 || s.End >= c.n || s.End < s.Start {
		return nil
	}
	return c.options[s.Start][s.End-s.Start]
}

// Len returns the total number of options.
func (c *OptionCollection) Len() int {
	total := 0
	for _, row := range c.options {
		for _, opts := range row {
			total += len(opts)
		}
	}
	return total
}

// Uncoverable returns the positions that no phrase option (rules excluded) can cover.
func (c *OptionCollection) Uncoverable() []int {
	covered := make([]bool, c.n)
	for start, row := range c.options {
		for length, opts := range row {
			for _, opt := range opts {
				if opt.Target.IsRule() {
					continue
				}
				for i := start; i <= start+length; i++ {
					covered[i] = true
				}
				break
			}
		}
	}
	var out []int
	for i, ok := range covered {
		if !ok {
			out = append(out, i)
		}
	}
	return out
}

// BuildFutureCosts computes the future cost table from the best phrase option per span
// and fills every option's RemainingCost.
func (c *OptionCollection) BuildFutureCosts() *FutureCostTable {
	c.future = NewFutureCostTable(c.n, func(s Span) (float64, bool) {
		best, found := 0.0, false
		for _, opt := range c.Get(s) {
			if opt.Target.IsRule() {
				continue
			}
			if !found || opt.Target.Total() > best {
				best, found = opt.Target.Total(), true
			}
		}
		return -best, found
	})
	empty := NewCoverage(c.n)
	for _, row := range c.options {
		for _, opts := range row {
			for _, opt := range opts {
				opt.RemainingCost = c.future.Remaining(empty.With(opt.Span))
			}
		}
	}
	return c.future
}

// FutureCosts returns the table built by BuildFutureCosts, or nil.
func (c *OptionCollection) FutureCosts() *FutureCostTable {
	return c.future
}
