package lm

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arpa = `
\data\
ngram 1=4
ngram 2=2

\1-grams:
-1.0	<s>	-0.5
-0.5	the	-0.3
-0.7	house
-1.0	</s>

\2-grams:
-0.2	<s> the
-0.1	the house

\end\
`

func TestRead(t *testing.T) {
	m, err := Read(strings.NewReader(arpa))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Order())
	assert.Equal(t, 6, m.Len())

	ln := math.Log(10)
	assert.InDelta(t, -0.1*ln, m.LogProb([]string{"the"}, "house"), 1e-9)
	// backoff: the -> </s> is unseen, use bo(the) + p(</s>)
	assert.InDelta(t, (-0.3-1.0)*ln, m.LogProb([]string{"the"}, EOS), 1e-9)
	// history without backoff entry
	assert.InDelta(t, -0.5*ln, m.LogProb([]string{"house"}, "the"), 1e-9)
	// history longer than order-1 is truncated
	assert.InDelta(t, -0.1*ln, m.LogProb([]string{"a", "b", "the"}, "house"), 1e-9)

	assert.Equal(t, UnknownLogProb, m.LogProb(nil, "maison"))
	assert.True(t, m.Contains("house"))
	assert.False(t, m.Contains("maison"))

	assert.InDelta(t, (-0.2-0.1)*ln, m.ScoreSequence([]string{BOS}, []string{"the", "house"}), 1e-9)
}

func TestUnknownEntry(t *testing.T) {
	m := NewModel(2)
	m.Add([]string{UNK}, -3, 0)
	assert.Equal(t, -3.0, m.LogProb(nil, "zzz"))
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no header", "\\1-grams:\n-1 a\n\\end\\\n"},
		{"bad prob", "\\data\\\n\\1-grams:\nx a\n\\end\\\n"},
		{"short line", "\\data\\\n\\2-grams:\n-1 a\n\\end\\\n"},
		{"bad section", "\\data\\\n\\x-grams:\n\\end\\\n"},
		{"no n-grams", "\\data\\\nngram 1=0\n\\end\\\n"},
		{"no end", "\\data\\\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lm.arpa")
	require.NoError(t, os.WriteFile(path, []byte(arpa), 0o600))
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Order())

	_, err = Load(filepath.Join(t.TempDir(), "missing.arpa"))
	assert.Error(t, err)
}
