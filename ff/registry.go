package ff

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/teatak/smt/phrase"
)

// Constructor builds a feature function from its parsed line.
type Constructor func(spec *Spec) (FeatureFunction, error)

// Constructors returns the table of every built-in feature type.
func Constructors() map[string]Constructor {
	return map[string]Constructor{
		"PhraseDictionaryMemory":   NewPhraseDictionaryMemory,
		"PhraseDictionarySQLite":   NewPhraseDictionarySQLite,
		"RuleTableMemory":          NewRuleTableMemory,
		"GlueRule":                 NewGlueRule,
		"WordPenalty":              NewWordPenalty,
		"PhrasePenalty":            NewPhrasePenalty,
		"UnknownWordPenalty":       NewUnknownWordPenalty,
		"Distortion":               NewDistortion,
		"NGramLM":                  NewNGramLM,
		"DiscriminativeClassifier": NewDiscriminativeClassifier,
	}
}

// Registry owns the loaded feature functions. It is read-only once Load returns and may
// be shared by concurrent decodes.
type Registry struct {
	table  map[string]Constructor
	logger *slog.Logger

	functions     []FeatureFunction
	stateful      []StatefulFunction
	providers     []TableProvider
	sourceContext []SourceContextFunction
	numScores     int
}

// NewRegistry creates a registry resolving type names through table.
func NewRegistry(table map[string]Constructor, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{table: table, logger: logger}
}

// Load builds one function per feature line, assigns score ranges in line order and
// loads them: everything else first, table providers last.
func (r *Registry) Load(ctx context.Context, lines []string) error {
	counts := make(map[string]int)
	names := make(map[string]bool)
	for i, line := range lines {
		spec, err := ParseSpec(i+1, line)
		if err != nil {
			return err
		}
		ctor, ok := r.table[spec.Type]
		if !ok {
			return &ConfigError{Line: spec.Line, Reason: "unknown feature type " + strconv.Quote(spec.Type)}
		}
		if spec.Name() == "" {
			spec.Args["name"] = spec.Type + strconv.Itoa(counts[spec.Type])
		}
		counts[spec.Type]++
		if names[spec.Name()] {
			return &ConfigError{Line: spec.Line, Key: "name", Reason: "duplicate feature name " + strconv.Quote(spec.Name())}
		}
		names[spec.Name()] = true

		f, err := ctor(spec)
		if err != nil {
			return fmt.Errorf("construct %s: %w", spec.Name(), err)
		}
		if err := r.register(spec, f); err != nil {
			return err
		}
		r.logger.Debug("feature constructed",
			slog.String("name", f.Name()),
			slog.String("type", f.TypeName()),
			slog.Int("offset", f.Offset()),
			slog.Int("scores", f.NumScores()))
	}

	for _, f := range r.functions {
		f.(layouter).setLayout(f.Offset(), r.numScores)
	}

	for pass, providers := range []bool{false, true} {
		for _, f := range r.functions {
			if f.Capabilities().Has(CapTableProvider) != providers {
				continue
			}
			start := time.Now()
			if err := f.Load(ctx); err != nil {
				return fmt.Errorf("load %s: %w", f.Name(), err)
			}
			r.logger.Info("feature loaded",
				slog.String("name", f.Name()),
				slog.Int("pass", pass+1),
				slog.Duration("took", time.Since(start)))
		}
	}
	return nil
}

func (r *Registry) register(spec *Spec, f FeatureFunction) error {
	l, ok := f.(layouter)
	if !ok {
		return &ConfigError{Line: spec.Line, Reason: spec.Type + " does not embed ff.Base"}
	}
	caps := f.Capabilities()
	if caps.Has(CapStateful) {
		sf, ok := f.(StatefulFunction)
		if !ok {
			return &ConfigError{Line: spec.Line, Reason: spec.Type + " declares stateful but has no state methods"}
		}
		r.stateful = append(r.stateful, sf)
	}
	if caps.Has(CapTableProvider) {
		tp, ok := f.(TableProvider)
		if !ok {
			return &ConfigError{Line: spec.Line, Reason: spec.Type + " declares table provider but has no lookup"}
		}
		r.providers = append(r.providers, tp)
	}
	if caps.Has(CapSourceContext) {
		sc, ok := f.(SourceContextFunction)
		if !ok {
			return &ConfigError{Line: spec.Line, Reason: spec.Type + " declares source context but has no evaluator"}
		}
		r.sourceContext = append(r.sourceContext, sc)
	}
	l.setLayout(r.numScores, 0)
	r.numScores += f.NumScores()
	r.functions = append(r.functions, f)
	return nil
}

// FindByName returns the function with the given instance name.
func (r *Registry) FindByName(name string) (FeatureFunction, error) {
	for _, f := range r.functions {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// Functions returns every function in registration order.
func (r *Registry) Functions() []FeatureFunction { return r.functions }

// Stateful returns the stateful functions in registration order.
func (r *Registry) Stateful() []StatefulFunction { return r.stateful }

// Providers returns the table providers in registration order.
func (r *Registry) Providers() []TableProvider { return r.providers }

// SourceContext returns the functions scoring whole candidate lists in context.
func (r *Registry) SourceContext() []SourceContextFunction { return r.sourceContext }

// NumScores returns the length of the global score vector.
func (r *Registry) NumScores() int { return r.numScores }

// Weights flattens per-instance weights into a vector aligned with the score layout.
func (r *Registry) Weights(byName map[string][]float64) (phrase.ScoreVector, error) {
	w := phrase.NewScoreVector(r.numScores)
	for _, f := range r.functions {
		ws, ok := byName[f.Name()]
		if !ok {
			return nil, &ConfigError{Key: f.Name(), Reason: "no weights"}
		}
		if len(ws) != f.NumScores() {
			return nil, &ConfigError{Key: f.Name(), Reason: fmt.Sprintf("got %d weights, want %d", len(ws), f.NumScores())}
		}
		w.Assign(f.Offset(), ws...)
	}
	for name := range byName {
		if _, err := r.FindByName(name); err != nil {
			return nil, &ConfigError{Key: name, Reason: "weights for unknown feature"}
		}
	}
	return w, nil
}
