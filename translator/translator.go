// Package translator turns raw text into translations. It tokenizes each sentence,
// decodes it with its own decoder.Manager and applies the failure policy to batches.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/teatak/smt/config"
	"github.com/teatak/smt/decoder"
	"github.com/teatak/smt/ff"
)

// Policy decides what a batch does with a sentence that cannot be translated.
type Policy string

const (
	// PolicySkip leaves the translation empty.
	PolicySkip Policy = "skip"
	// PolicyPassthrough echoes the source sentence.
	PolicyPassthrough Policy = "passthrough"
	// PolicyFail aborts the batch.
	PolicyFail Policy = "fail"
)

// Result is the outcome for one sentence.
type Result struct {
	Source      string                `json:"source"`
	Translation string                `json:"translation"`
	Score       float64               `json:"score"`
	RequestID   string                `json:"request_id"`
	NBest       []*decoder.Derivation `json:"-"`
	Stats       decoder.Stats         `json:"-"`
	// Err is set when the policy replaced a failed translation.
	Err error `json:"-"`
}

// Translator is safe for concurrent use; every sentence gets its own Manager.
type Translator struct {
	sys    *decoder.System
	policy Policy
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a Translator over a loaded system.
func New(sys *decoder.System, policy Policy, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		sys:    sys,
		policy: policy,
		logger: logger,
		tracer: otel.Tracer("github.com/teatak/smt/translator"),
	}
}

// Build loads every feature of cfg and returns a ready Translator.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Translator, error) {
	reg := ff.NewRegistry(ff.Constructors(), logger)
	if err := reg.Load(ctx, cfg.Features); err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	weights, err := reg.Weights(cfg.Weights)
	if err != nil {
		return nil, err
	}
	sys, err := decoder.NewSystem(reg, weights, cfg.Search, logger)
	if err != nil {
		return nil, err
	}
	return New(sys, Policy(cfg.Translate.Policy), logger), nil
}

// System returns the decoder system.
func (t *Translator) System() *decoder.System {
	return t.sys
}

// Translate decodes one sentence. A search failure is returned as is; the policy only
// applies to batches.
func (t *Translator) Translate(ctx context.Context, text string) (*Result, error) {
	res := &Result{Source: text, RequestID: uuid.NewString()}
	ctx, span := t.tracer.Start(ctx, "translator.translate",
		trace.WithAttributes(attribute.String("request_id", res.RequestID)))
	defer span.End()

	tokens := Tokenize(text)
	m := t.sys.NewManager(tokens)
	defer m.Release()
	best, err := m.Decode(ctx)
	res.Stats = m.Stats()
	span.SetAttributes(
		attribute.Int("words", len(tokens)),
		attribute.Int("hypotheses", res.Stats.Created),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Warn("translation failed",
			slog.String("request_id", res.RequestID),
			slog.Int("words", len(tokens)),
			slog.Any("error", err))
		return res, err
	}

	res.Translation = Detokenize(best.Words)
	res.Score = best.Score
	if n := t.sys.Options.NBest; n > 1 {
		res.NBest = m.NBest(n)
	}
	t.logger.Info("translated",
		slog.String("request_id", res.RequestID),
		slog.Int("words", len(tokens)),
		slog.Float64("score", res.Score),
		slog.Int("hypotheses", res.Stats.Created),
		slog.Int("recombined", res.Stats.Recombined),
		slog.Duration("took", res.Stats.Duration))
	return res, nil
}

// TranslateBatch translates lines with up to workers sentences in flight. Results keep
// the input order. Failed sentences follow the policy; with PolicyFail the first
// failure cancels the remaining sentences and is returned.
func (t *Translator) TranslateBatch(ctx context.Context, lines []string, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, line := range lines {
		g.Go(func() error {
			res, err := t.Translate(gctx, line)
			if err != nil {
				if t.policy == PolicyFail {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				res.Err = err
				if t.policy == PolicyPassthrough {
					res.Translation = line
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed reports whether err is a per-sentence search failure rather than a setup error.
func Failed(err error) bool {
	return errors.Is(err, decoder.ErrSearchFailure)
}
