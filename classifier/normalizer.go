package classifier

import (
	"fmt"
	"math"
)

// Normalizer turns the losses of one candidate list into a distribution, in place.
type Normalizer interface {
	Normalize(losses []float64)
}

// NewNormalizer returns the normalizer registered under name ("logistic" or "squared").
func NewNormalizer(name string) (Normalizer, error) {
	switch name {
	case "", "logistic":
		return Logistic{}, nil
	case "squared":
		return Squared{}, nil
	}
	return nil, fmt.Errorf("unknown loss %q", name)
}

// Logistic is a softmax over negated losses.
type Logistic struct{}

// Normalize implements Normalizer.
func (Logistic) Normalize(losses []float64) {
	if len(losses) == 0 {
		return
	}
	// shift by the smallest loss for numerical stability
	best := losses[0]
	for _, l := range losses {
		best = math.Min(best, l)
	}
	sum := 0.0
	for i, l := range losses {
		losses[i] = math.Exp(best - l)
		sum += losses[i]
	}
	for i := range losses {
		losses[i] /= sum
	}
}

// Squared clips losses to [0,1], flips them so that 0 loss is best and normalizes.
type Squared struct{}

// Normalize implements Normalizer.
func (Squared) Normalize(losses []float64) {
	sum := 0.0
	for i, l := range losses {
		losses[i] = 1 - math.Max(0, math.Min(1, l))
		sum += losses[i]
	}
	for i := range losses {
		if sum == 0 {
			losses[i] = 1 / float64(len(losses))
		} else {
			losses[i] /= sum
		}
	}
}
