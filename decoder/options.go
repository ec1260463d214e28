package decoder

import (
	"time"

	"github.com/teatak/smt/ff"
)

// Algorithm selects the search strategy.
type Algorithm string

const (
	AlgorithmStack Algorithm = "stack"
	AlgorithmChart Algorithm = "chart"
)

// UnknownPolicy decides what happens to source words no table can translate.
type UnknownPolicy string

const (
	UnknownFail        UnknownPolicy = "fail"
	UnknownPassthrough UnknownPolicy = "passthrough"
)

// Options configures the search.
type Options struct {
	Algorithm Algorithm `yaml:"algorithm"`
	// StackSize is the histogram pruning limit per stack or cell; 0 keeps everything.
	StackSize int `yaml:"stack_size"`
	// BeamWidth is the relative threshold in log score; negative disables it.
	BeamWidth float64 `yaml:"beam_width"`
	// DistortionLimit bounds reordering jumps; negative means unlimited.
	DistortionLimit int `yaml:"distortion_limit"`
	// MaxPhraseLength bounds the source spans queried in phrase-based search.
	MaxPhraseLength int `yaml:"max_phrase_length"`
	// MaxExpansions aborts a sentence after this many expansions; 0 is unlimited.
	MaxExpansions int           `yaml:"max_expansions"`
	TimeLimit     time.Duration `yaml:"time_limit"`
	// ChartWorkers > 1 builds the cells of one span length concurrently.
	ChartWorkers int `yaml:"chart_workers"`
	// MaxChartChildren caps the child combinations tried per rule application; 0 is unlimited.
	MaxChartChildren int           `yaml:"max_chart_children"`
	UnknownWords     UnknownPolicy `yaml:"unknown_words"`
	NBest            int           `yaml:"nbest"`
}

// DefaultOptions returns the default search settings.
func DefaultOptions() Options {
	return Options{
		Algorithm:        AlgorithmStack,
		StackSize:        100,
		BeamWidth:        10,
		DistortionLimit:  6,
		MaxPhraseLength:  7,
		ChartWorkers:     1,
		MaxChartChildren: 100,
		UnknownWords:     UnknownFail,
		NBest:            1,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	invalid := func(key, reason string) error {
		return &ff.ConfigError{Key: "search." + key, Reason: reason}
	}
	switch o.Algorithm {
	case AlgorithmStack, AlgorithmChart:
	default:
		return invalid("algorithm", "must be stack or chart, got "+string(o.Algorithm))
	}
	switch o.UnknownWords {
	case UnknownFail, UnknownPassthrough:
	default:
		return invalid("unknown_words", "must be fail or passthrough, got "+string(o.UnknownWords))
	}
	if o.StackSize < 0 {
		return invalid("stack_size", "must be >= 0")
	}
	if o.MaxPhraseLength < 1 {
		return invalid("max_phrase_length", "must be >= 1")
	}
	if o.MaxExpansions < 0 {
		return invalid("max_expansions", "must be >= 0")
	}
	if o.TimeLimit < 0 {
		return invalid("time_limit", "must be >= 0")
	}
	if o.ChartWorkers < 1 {
		return invalid("chart_workers", "must be >= 1")
	}
	if o.MaxChartChildren < 0 {
		return invalid("max_chart_children", "must be >= 0")
	}
	if o.NBest < 1 {
		return invalid("nbest", "must be >= 1")
	}
	return nil
}
