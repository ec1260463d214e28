package ff

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatak/smt/classifier"
	"github.com/teatak/smt/dictionary"
	"github.com/teatak/smt/lm"
	"github.com/teatak/smt/phrase"
)

func mustSpec(t *testing.T, text string) *Spec {
	t.Helper()
	s, err := ParseSpec(1, text)
	require.NoError(t, err)
	if s.Name() == "" {
		s.Args["name"] = s.Type
	}
	return s
}

func TestPenalties(t *testing.T) {
	tp := &phrase.TargetPhrase{Words: []string{"[X,1]", "the", "house"}}
	scores := phrase.NewScoreVector(1)

	wp, err := NewWordPenalty(mustSpec(t, "WordPenalty"))
	require.NoError(t, err)
	wp.EvaluateInIsolation(tp, scores, nil)
	assert.Equal(t, -2.0, scores[0])

	pp, err := NewPhrasePenalty(mustSpec(t, "PhrasePenalty"))
	require.NoError(t, err)
	pp.EvaluateInIsolation(tp, scores, nil)
	assert.Equal(t, 1.0, scores[0])

	up, err := NewUnknownWordPenalty(mustSpec(t, "UnknownWordPenalty"))
	require.NoError(t, err)
	scores[0] = 0
	up.EvaluateInIsolation(tp, scores, nil)
	assert.Equal(t, 0.0, scores[0])
	up.EvaluateInIsolation(&phrase.TargetPhrase{Words: []string{"zzz"}, Unknown: true}, scores, nil)
	assert.Equal(t, 1.0, scores[0])
}

func TestDistortion(t *testing.T) {
	f, err := NewDistortion(mustSpec(t, "Distortion"))
	require.NoError(t, err)
	d := f.(*Distortion)
	src := phrase.Phrase{"a", "b", "c", "d"}
	scores := phrase.NewScoreVector(1)

	// translate [2,3] first, then [0,1]
	st := d.EmptyState(src)
	st = d.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 2, End: 3}, Prev: []State{st}}, scores)
	assert.Equal(t, -2.0, scores[0])
	assert.Equal(t, "3", st.Key())
	d.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 0, End: 1}, Prev: []State{st}, Final: true}, scores)
	// jump back 4, then 2 to reach the end
	assert.Equal(t, -8.0, scores[0])

	before := scores[0]
	d.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 2, End: 3}, Chart: true}, scores)
	assert.Equal(t, before, scores[0])
}

func testModel() *lm.Model {
	m := lm.NewModel(2)
	m.Add([]string{lm.BOS}, -1, -0.5)
	m.Add([]string{lm.EOS}, -2, 0)
	m.Add([]string{"the"}, -1.5, -0.2)
	m.Add([]string{"house"}, -2, -0.1)
	m.Add([]string{lm.BOS, "the"}, -0.3, 0)
	m.Add([]string{"the", "house"}, -0.4, 0)
	m.Add([]string{"house", lm.EOS}, -0.2, 0)
	return m
}

func TestNGramLM_Phrase(t *testing.T) {
	m := testModel()
	f := NewNGramLMFromModel(mustSpec(t, "NGramLM"), m)
	require.NoError(t, f.Load(context.Background()))
	src := phrase.Phrase{"la", "maison"}
	scores := phrase.NewScoreVector(1)

	st := f.EmptyState(src)
	st = f.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 0, End: 0}, Target: &phrase.TargetPhrase{Words: []string{"the"}}, Prev: []State{st}}, scores)
	assert.InDelta(t, -0.3, scores[0], 1e-9)
	assert.Equal(t, "the", st.Key())

	f.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 1, End: 1}, Target: &phrase.TargetPhrase{Words: []string{"house"}}, Prev: []State{st}, Final: true}, scores)
	assert.InDelta(t, -0.3-0.4-0.2, scores[0], 1e-9)

	est := phrase.NewScoreVector(1)
	f.EvaluateInIsolation(&phrase.TargetPhrase{Words: []string{"the", "house"}}, nil, est)
	assert.InDelta(t, -1.5-0.4, est[0], 1e-9)
}

func TestNGramLM_ChartMatchesPhrase(t *testing.T) {
	m := testModel()
	f := NewNGramLMFromModel(mustSpec(t, "NGramLM"), m)
	src := phrase.Phrase{"la", "maison"}

	// X -> la : the
	child := phrase.NewScoreVector(1)
	cst := f.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 0, End: 0}, Target: &phrase.TargetPhrase{Words: []string{"the"}}, Chart: true}, child)
	assert.Equal(t, 0.0, child[0], "first word waits for its history")

	// X -> [X,1] maison : [X,1] house, covering the whole sentence
	parent := phrase.NewScoreVector(1)
	rule := &phrase.TargetPhrase{Words: []string{"[X,1]", "house"}, Children: []phrase.Span{{Start: 0, End: 0}}}
	pst := f.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 0, End: 1}, Target: rule, Prev: []State{cst}, Chart: true, Final: true}, parent)

	assert.InDelta(t, -0.3-0.4-0.2, child[0]+parent[0], 1e-9)

	// S -> [X,1] on top of a final constituent adds nothing
	top := phrase.NewScoreVector(1)
	unary := &phrase.TargetPhrase{Words: []string{"[X,1]"}, Children: []phrase.Span{{Start: 0, End: 1}}}
	ust := f.EvaluateWhenApplied(&ApplyContext{Source: src, Span: phrase.Span{Start: 0, End: 1}, Target: unary, Prev: []State{pst}, Chart: true}, top)
	assert.Equal(t, 0.0, top[0])
	assert.Equal(t, pst.Key(), ust.Key())
}

func TestPhraseDictionaryProviders(t *testing.T) {
	text := "la maison ||| the house ||| -0.5\nmaison ||| house ||| -0.1\n"
	pt := writeFile(t, "pt.txt", text)

	table := dictionary.NewTable(1)
	require.NoError(t, table.Read(strings.NewReader(text), false))
	db := filepath.Join(t.TempDir(), "pt.db")
	store, err := dictionary.OpenSQLite(db)
	require.NoError(t, err)
	_, err = store.Import(context.Background(), table)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	r := NewRegistry(Constructors(), nil)
	require.NoError(t, r.Load(context.Background(), []string{
		"WordPenalty",
		"PhraseDictionaryMemory path=" + pt + " num-features=1 table-limit=5",
		"PhraseDictionarySQLite path=" + db + " num-features=1",
	}))
	src := phrase.Phrase{"la", "maison"}
	for i, p := range r.Providers() {
		got := p.Lookup(src, phrase.Span{Start: 0, End: 1})
		require.Len(t, got, 1, p.Name())
		assert.Equal(t, []string{"the", "house"}, got[0].Words)
		assert.Equal(t, "X", got[0].LHS)
		assert.Len(t, got[0].Scores, 3)
		assert.Equal(t, -0.5, got[0].Scores[1+i])
		assert.Empty(t, p.Lookup(src, phrase.Span{Start: 0, End: 0}))
	}
	assert.Equal(t, 5, r.Providers()[0].TableLimit())
	assert.Equal(t, DefaultTableLimit, r.Providers()[1].TableLimit())
}

func TestRuleTableAndGlue(t *testing.T) {
	table := dictionary.NewTable(1)
	require.NoError(t, table.Read(strings.NewReader("X ||| [X,1] de [X,2] ||| [X,2] 's [X,1] ||| -0.3\nX ||| jean ||| john ||| -0.1\n"), true))
	rt := NewRuleTableFromTable(mustSpec(t, "RuleTableMemory"), table, 0, 10)
	rt.setLayout(0, 1)

	src := phrase.Phrase{"maison", "de", "jean"}
	got := rt.Lookup(src, phrase.Span{Start: 0, End: 2})
	require.Len(t, got, 1)
	assert.Equal(t, []phrase.Span{{Start: 0, End: 0}, {Start: 2, End: 2}}, got[0].Children)
	assert.Equal(t, []string{"[X,1]", "de", "[X,2]"}, got[0].Source)
	assert.True(t, got[0].IsRule())

	lex := rt.Lookup(src, phrase.Span{Start: 2, End: 2})
	require.Len(t, lex, 1)
	assert.False(t, lex[0].IsRule())

	narrow := NewRuleTableFromTable(mustSpec(t, "RuleTableMemory"), table, 0, 2)
	narrow.setLayout(0, 1)
	assert.Empty(t, narrow.Lookup(src, phrase.Span{Start: 0, End: 2}))

	g, err := NewGlueRule(mustSpec(t, "GlueRule"))
	require.NoError(t, err)
	glue := g.(*GlueRule)
	glue.setLayout(0, 1)
	assert.Nil(t, glue.Lookup(src, phrase.Span{Start: 1, End: 2}))
	rules := glue.Lookup(src, phrase.Span{Start: 0, End: 2})
	require.Len(t, rules, 3)
	assert.Equal(t, GoalLabel, rules[0].LHS)
	assert.Equal(t, []phrase.Span{{Start: 0, End: 2}}, rules[0].Children)
	assert.Equal(t, []phrase.Span{{Start: 0, End: 1}, {Start: 2, End: 2}}, rules[2].Children)
	assert.Equal(t, 0, glue.TableLimit())
}

func TestDiscriminativeClassifier(t *testing.T) {
	m := classifier.NewModel()
	m.Update("L1:la^TW:house", -math.Log(3))
	f := NewDiscriminativeClassifierFromModel(mustSpec(t, "DiscriminativeClassifier"), m, classifier.Logistic{}, 2)
	require.NoError(t, f.Load(context.Background()))
	assert.Equal(t, 2, f.Pool().Size())

	targets := []*phrase.TargetPhrase{
		{Words: []string{"house"}, Scores: phrase.NewScoreVector(1)},
		{Words: []string{"home"}, Scores: phrase.NewScoreVector(1)},
	}
	src := phrase.Phrase{"la", "maison"}
	require.NoError(t, f.EvaluateWithSourceContext(context.Background(), src, phrase.Span{Start: 1, End: 1}, targets))
	assert.InDelta(t, math.Log(0.75), targets[0].Scores[0], 1e-9)
	assert.InDelta(t, math.Log(0.25), targets[1].Scores[0], 1e-9)
	assert.Equal(t, 2, f.Pool().Available())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h1, _ := f.Pool().Acquire(context.Background())
	h2, _ := f.Pool().Acquire(context.Background())
	assert.ErrorIs(t, f.EvaluateWithSourceContext(ctx, src, phrase.Span{Start: 1, End: 1}, targets), context.Canceled)
	f.Pool().Release(h1)
	f.Pool().Release(h2)
}
