package phrase

// ScoreVector is the flat global score vector. Each feature function owns a fixed
// contiguous range of it.
type ScoreVector []float64

// NewScoreVector returns a zero vector of length n.
func NewScoreVector(n int) ScoreVector {
	return make(ScoreVector, n)
}

// Assign writes scores into the range starting at offset.
func (v ScoreVector) Assign(offset int, scores ...float64) {
	copy(v[offset:offset+len(scores)], scores)
}

// Range returns the sub-slice [offset, offset+n).
func (v ScoreVector) Range(offset, n int) []float64 {
	return v[offset : offset+n]
}

// PlusEquals adds o to v element-wise.
func (v ScoreVector) PlusEquals(o ScoreVector) {
	for i, s := range o {
		v[i] += s
	}
}

// Dot returns the weighted sum of v under w.
func (v ScoreVector) Dot(w ScoreVector) float64 {
	total := 0.0
	for i, s := range v {
		total += s * w[i]
	}
	return total
}

// Clone returns an independent copy.
func (v ScoreVector) Clone() ScoreVector {
	out := make(ScoreVector, len(v))
	copy(out, v)
	return out
}
