package classifier

import "context"

// Predictor is one handle onto the model. It owns a scratch buffer so concurrent
// sentence decodes never share mutable state.
type Predictor struct {
	model *Model
	feats []string
}

// NewPredictor creates a predictor over m.
func NewPredictor(m *Model) *Predictor {
	return &Predictor{model: m}
}

// Losses predicts one loss per candidate target for the source span [start,end].
func (p *Predictor) Losses(tokens []string, start, end int, targets [][]string) []float64 {
	src := SourceFeatures(tokens, start, end)
	out := make([]float64, len(targets))
	for i, tgt := range targets {
		p.feats = append(p.feats[:0], Combine(src, TargetFeatures(tgt))...)
		out[i] = p.model.Predict(p.feats)
	}
	return out
}

// Pool is a bounded set of predictors. Acquire blocks until one is free.
type Pool struct {
	handles chan *Predictor
	size    int
}

// NewPool creates size predictors over m. size is at least one.
func NewPool(m *Model, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{handles: make(chan *Predictor, size), size: size}
	for i := 0; i < size; i++ {
		p.handles <- NewPredictor(m)
	}
	return p
}

// Acquire takes a predictor, waiting until one is released or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Predictor, error) {
	select {
	case h := <-p.handles:
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a predictor taken with Acquire.
func (p *Pool) Release(h *Predictor) {
	p.handles <- h
}

// Size returns the number of predictors.
func (p *Pool) Size() int {
	return p.size
}

// Available returns the number of predictors not currently acquired.
func (p *Pool) Available() int {
	return len(p.handles)
}
