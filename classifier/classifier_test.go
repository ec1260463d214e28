package classifier

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_SaveLoad(t *testing.T) {
	m := NewModel()
	m.Bias = 0.5
	m.Update("S:maison^T:house", -1.5)
	m.Update("TW:home", 2)
	m.Update("TW:gone", 1)
	m.Update("TW:gone", -1)
	assert.NotContains(t, m.Weights, "TW:gone")

	path := filepath.Join(t.TempDir(), "model.txt")
	require.NoError(t, m.Save(path))

	loaded := NewModel()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, m.Weights, loaded.Weights)
	assert.Equal(t, 0.5, loaded.Bias)

	assert.Equal(t, 0.5-1.5, loaded.Predict([]string{"S:maison^T:house", "unseen"}))
}

func TestModel_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("F onlyname\n"), 0o600))
	assert.Error(t, NewModel().Load(path))
}

func TestSourceFeatures(t *testing.T) {
	tokens := []string{"la", "maison", "bleue"}
	got := SourceFeatures(tokens, 1, 1)
	assert.Equal(t, []string{"S:maison", "L2:_BOS_", "L1:la", "R1:bleue", "R2:_EOS_"}, got)

	got = SourceFeatures(tokens, 0, 2)
	assert.Equal(t, []string{"S:la_maison_bleue", "L2:_BOS_", "L1:_BOS_", "R1:_EOS_", "R2:_EOS_"}, got)
}

func TestCombine(t *testing.T) {
	got := Combine([]string{"S:a", "L1:b"}, TargetFeatures([]string{"x"}))
	assert.Equal(t, []string{"T:x", "TW:x", "S:a^T:x", "S:a^TW:x", "L1:b^T:x", "L1:b^TW:x"}, got)
}

func TestNormalizers(t *testing.T) {
	losses := []float64{0, math.Log(3)}
	Logistic{}.Normalize(losses)
	assert.InDelta(t, 0.75, losses[0], 1e-9)
	assert.InDelta(t, 0.25, losses[1], 1e-9)

	losses = []float64{-1, 0.5, 2}
	Squared{}.Normalize(losses)
	assert.InDelta(t, 1/1.5, losses[0], 1e-9)
	assert.InDelta(t, 0.5/1.5, losses[1], 1e-9)
	assert.Equal(t, 0.0, losses[2])

	losses = []float64{1, 3}
	Squared{}.Normalize(losses)
	assert.Equal(t, []float64{0.5, 0.5}, losses)

	_, err := NewNormalizer("hinge")
	assert.Error(t, err)
	n, err := NewNormalizer("squared")
	require.NoError(t, err)
	assert.IsType(t, Squared{}, n)
}

func TestPool(t *testing.T) {
	m := NewModel()
	m.Update("TW:house", -1)
	pool := NewPool(m, 1)
	assert.Equal(t, 1, pool.Size())

	h, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, pool.Available())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	got := make(chan *Predictor)
	go func() {
		h2, _ := pool.Acquire(context.Background())
		got <- h2
	}()
	pool.Release(h)
	assert.Same(t, h, <-got)

	losses := h.Losses([]string{"maison"}, 0, 0, [][]string{{"house"}, {"home"}})
	assert.Equal(t, []float64{-1, 0}, losses)
}
