package ff

import (
	"context"
	"fmt"

	"github.com/teatak/smt/dictionary"
	"github.com/teatak/smt/phrase"
)

// DefaultTableLimit is the number of candidates kept per span when a table line does not
// set table-limit.
const DefaultTableLimit = 20

// PhraseDictionary provides phrase pairs from a dictionary.Table. The Memory and SQLite
// variants only differ in how the table is filled.
type PhraseDictionary struct {
	Base
	path       string
	tableLimit int
	table      *dictionary.Table
	fill       func(ctx context.Context, t *dictionary.Table) error
}

func newPhraseDictionary(spec *Spec) (*PhraseDictionary, error) {
	path, err := spec.Require("path")
	if err != nil {
		return nil, err
	}
	n, err := spec.RequireInt("num-features")
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, &ConfigError{Line: spec.Line, Key: "num-features", Reason: "must be positive"}
	}
	limit, err := spec.Int("table-limit", DefaultTableLimit)
	if err != nil {
		return nil, err
	}
	return &PhraseDictionary{Base: NewBase(spec, n), path: path, tableLimit: limit}, nil
}

// NewPhraseDictionaryMemory reads a text phrase table.
func NewPhraseDictionaryMemory(spec *Spec) (FeatureFunction, error) {
	pd, err := newPhraseDictionary(spec)
	if err != nil {
		return nil, err
	}
	pd.fill = func(_ context.Context, t *dictionary.Table) error {
		return t.Load(pd.path)
	}
	return pd, nil
}

// NewPhraseDictionarySQLite reads a phrase table stored with dictionary.SQLiteStore.
func NewPhraseDictionarySQLite(spec *Spec) (FeatureFunction, error) {
	pd, err := newPhraseDictionary(spec)
	if err != nil {
		return nil, err
	}
	pd.fill = func(ctx context.Context, t *dictionary.Table) error {
		store, err := dictionary.OpenSQLite(pd.path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.LoadInto(ctx, t)
	}
	return pd, nil
}

// NewPhraseDictionaryFromTable serves an already filled table.
func NewPhraseDictionaryFromTable(spec *Spec, t *dictionary.Table, tableLimit int) *PhraseDictionary {
	return &PhraseDictionary{
		Base:       NewBase(spec, t.NumScores),
		tableLimit: tableLimit,
		table:      t,
		fill:       func(context.Context, *dictionary.Table) error { return nil },
	}
}

func (f *PhraseDictionary) Capabilities() Capability { return CapTableProvider }

func (f *PhraseDictionary) TableLimit() int { return f.tableLimit }

func (f *PhraseDictionary) Load(ctx context.Context) error {
	if f.table == nil {
		f.table = dictionary.NewTable(f.numScores)
	}
	if f.table.Loaded {
		return nil
	}
	if err := f.fill(ctx, f.table); err != nil {
		return fmt.Errorf("%s: %w", f.path, err)
	}
	return nil
}

func (f *PhraseDictionary) Lookup(src phrase.Phrase, s phrase.Span) []*phrase.TargetPhrase {
	if s.Len() > f.table.MaxLen {
		return nil
	}
	entries := f.table.Lookup(src.Sub(s).String())
	out := make([]*phrase.TargetPhrase, 0, len(entries))
	for _, e := range entries {
		out = append(out, f.newTarget(e, nil))
	}
	return out
}

func (f *PhraseDictionary) newTarget(e *dictionary.Entry, children []phrase.Span) *phrase.TargetPhrase {
	tp := &phrase.TargetPhrase{
		Words:    e.Target,
		LHS:      e.LHS,
		Children: children,
		Scores:   f.NewScores(),
	}
	if len(children) > 0 {
		tp.Source = e.Source
	}
	tp.Scores.Assign(f.offset, e.Scores...)
	return tp
}
