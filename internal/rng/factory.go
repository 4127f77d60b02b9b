// Package rng hands out named pseudo-random streams derived from one seed.
// The same seed always yields the same stream for a given name, so a run
// with a fixed seed is reproducible.
package rng

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// Mode selects how the base seed is chosen.
type Mode int

const (
	// Deterministic uses the seed passed to New.
	Deterministic Mode = iota
	// Real seeds once from the clock.
	Real
)

func (m Mode) String() string {
	if m == Real {
		return "real"
	}
	return "deterministic"
}

// Stream names used by the mixer.
const (
	StreamShuffle = "shuffle"
	StreamGas     = "gas"
	StreamProxy   = "proxy"
)

// Factory caches one *rand.Rand per stream name.
type Factory struct {
	baseSeed int64
	mode     Mode

	mu      sync.Mutex
	streams map[string]*rand.Rand
}

// New creates a factory. In Real mode the seed argument is ignored.
func New(mode Mode, seed int64) *Factory {
	if mode == Real {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		baseSeed: seed,
		mode:     mode,
		streams:  make(map[string]*rand.Rand),
	}
}

// Seed returns the base seed in use, so a Real run can be replayed.
func (f *Factory) Seed() int64 { return f.baseSeed }

// Mode reports the factory mode.
func (f *Factory) Mode() Mode { return f.mode }

// R returns the named stream, creating it on first use.
func (f *Factory) R(name string) *rand.Rand {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, ok := f.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(deriveSeed(f.baseSeed, name)))
	f.streams[name] = r
	return r
}

func deriveSeed(base int64, name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64()) ^ base
}
