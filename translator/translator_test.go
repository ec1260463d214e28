package translator

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatak/smt/config"
	"github.com/teatak/smt/decoder"
)

const phraseTable = `das haus ||| the house ||| -0.5
das ||| the ||| -0.7
haus ||| house ||| -0.6
ist ||| is ||| -0.2
klein ||| small ||| -0.4
klein ||| little ||| -0.5
. ||| . ||| 0
`

func newTranslator(t *testing.T, policy Policy, nbest int) *Translator {
	t.Helper()
	pt := filepath.Join(t.TempDir(), "pt.txt")
	require.NoError(t, os.WriteFile(pt, []byte(phraseTable), 0o600))

	cfg := config.Default()
	cfg.Features = []string{
		"PhraseDictionaryMemory name=TM path=" + pt + " num-features=1",
		"WordPenalty",
		"Distortion",
	}
	cfg.Weights = map[string][]float64{
		"TM":           {1},
		"WordPenalty0": {0},
		"Distortion0":  {0.1},
	}
	cfg.Search.NBest = nbest
	cfg.Translate.Policy = string(policy)
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tr, err := Build(context.Background(), cfg, logger)
	require.NoError(t, err)
	return tr
}

func TestTranslate(t *testing.T) {
	tr := newTranslator(t, PolicySkip, 3)

	res, err := tr.Translate(context.Background(), "das haus ist klein.")
	require.NoError(t, err)
	assert.Equal(t, "the house is small.", res.Translation)
	assert.InDelta(t, -1.1, res.Score, 1e-9)
	assert.NotEmpty(t, res.RequestID)
	assert.Positive(t, res.Stats.Created)

	require.NotEmpty(t, res.NBest)
	assert.Equal(t, "the house is small .", res.NBest[0].String())
	for i := 1; i < len(res.NBest); i++ {
		assert.GreaterOrEqual(t, res.NBest[i-1].Score, res.NBest[i].Score)
	}

	other, err := tr.Translate(context.Background(), "das haus")
	require.NoError(t, err)
	assert.NotEqual(t, res.RequestID, other.RequestID)
}

func TestTranslate_Failure(t *testing.T) {
	tr := newTranslator(t, PolicySkip, 1)
	res, err := tr.Translate(context.Background(), "das auto")
	require.Error(t, err)
	assert.True(t, Failed(err))
	assert.ErrorIs(t, err, decoder.ErrSearchFailure)
	assert.Empty(t, res.Translation)
}

func TestTranslateBatch_Policies(t *testing.T) {
	lines := []string{"das haus", "das auto", "ist klein"}

	t.Run("skip", func(t *testing.T) {
		results, err := newTranslator(t, PolicySkip, 1).TranslateBatch(context.Background(), lines, 2)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "the house", results[0].Translation)
		assert.Empty(t, results[1].Translation)
		assert.ErrorIs(t, results[1].Err, decoder.ErrSearchFailure)
		assert.Equal(t, "is small", results[2].Translation)
	})

	t.Run("passthrough", func(t *testing.T) {
		results, err := newTranslator(t, PolicyPassthrough, 1).TranslateBatch(context.Background(), lines, 2)
		require.NoError(t, err)
		assert.Equal(t, "das auto", results[1].Translation)
		assert.Error(t, results[1].Err)
		assert.NoError(t, results[0].Err)
	})

	t.Run("fail", func(t *testing.T) {
		_, err := newTranslator(t, PolicyFail, 1).TranslateBatch(context.Background(), lines, 1)
		assert.ErrorIs(t, err, decoder.ErrSearchFailure)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func TestTranslateBatch_Concurrent(t *testing.T) {
	tr := newTranslator(t, PolicySkip, 1)
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "das haus ist klein"
	}
	results, err := tr.TranslateBatch(context.Background(), lines, 8)
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, "the house is small", res.Translation)
		assert.InDelta(t, -1.1, res.Score, 1e-9)
	}
}

func TestBuild_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Features = []string{"WordPenalty"}
	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err, "missing weights")

	cfg.Features = []string{"NoSuchFeature"}
	_, err = Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Hello, world!", []string{"Hello", ",", "world", "!"}},
		{"it costs 3.5 or 1,000.", []string{"it", "costs", "3.5", "or", "1,000", "."}},
		{"a  b\tc", []string{"a", "b", "c"}},
		{"我爱你", []string{"我", "爱", "你"}},
		{"(x)", []string{"(", "x", ")"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.text), tt.text)
	}
}

func TestDetokenize(t *testing.T) {
	assert.Equal(t, "Hello, world!", Detokenize([]string{"Hello", ",", "world", "!"}))
	assert.Equal(t, "see (x) now", Detokenize([]string{"see", "(", "x", ")", "now"}))
	assert.Equal(t, "", Detokenize(nil))
}
