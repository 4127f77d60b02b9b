package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func draw(f *Factory, name string, n int) []int64 {
	out := make([]int64, n)
	r := f.R(name)
	for i := range out {
		out[i] = r.Int63()
	}
	return out
}

func TestDeterministicStreamsAreReproducible(t *testing.T) {
	a := New(Deterministic, 42)
	b := New(Deterministic, 42)

	assert.Equal(t, draw(a, StreamShuffle, 8), draw(b, StreamShuffle, 8))
	assert.Equal(t, int64(42), a.Seed())
	assert.Equal(t, Deterministic, a.Mode())
	assert.Equal(t, "deterministic", a.Mode().String())
	assert.Equal(t, "real", New(Real, 0).Mode().String())
}

func TestStreamsAreIndependentByName(t *testing.T) {
	f := New(Deterministic, 7)
	assert.NotEqual(t, draw(f, StreamShuffle, 4), draw(f, StreamGas, 4))
}

func TestStreamIsCached(t *testing.T) {
	f := New(Deterministic, 1)
	assert.Same(t, f.R(StreamProxy), f.R(StreamProxy))
}

func TestDifferentSeedsDiffer(t *testing.T) {
	assert.NotEqual(t, draw(New(Deterministic, 1), StreamGas, 4), draw(New(Deterministic, 2), StreamGas, 4))
}
