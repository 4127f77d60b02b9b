// Package mixer reorders wallet task lists.
//
// Each wallet schema is normalized block by block, split into fixed and
// groupable segments, and the groupable segments are shuffled among their
// own slots before the schema is flattened back. Fixed blocks never move
// and no segment is reordered internally.
package mixer

import (
	"errors"
	"math/rand"

	"kozelmixer/internal/logging"
	"kozelmixer/internal/rng"
	"kozelmixer/internal/types"
)

// ErrEmptyInput is returned when the batch resolves to no wallet schemas.
var ErrEmptyInput = errors.New("input batch has no wallet schemas")

// Mixer drives normalization, segmentation and shuffling over a batch.
type Mixer struct {
	rules   *Rules
	norm    *Normalizer
	shuffle *rand.Rand
}

// New creates a Mixer. rules defaults to DefaultRules when nil and
// proxies may be nil when proxy injection is not wanted.
func New(opts Options, rules *Rules, src *rng.Factory, proxies ProxyPicker) *Mixer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Mixer{
		rules:   rules,
		norm:    NewNormalizer(opts, src.R(rng.StreamGas), src.R(rng.StreamProxy), proxies),
		shuffle: src.R(rng.StreamShuffle),
	}
}

// Mix transforms every wallet schema of in, preserving schema order.
func (m *Mixer) Mix(in types.Batch) (types.Result, error) {
	if len(in.Tasklist) == 0 {
		return types.Result{}, ErrEmptyInput
	}

	timer := logging.StartTimer(logging.CategoryMixer, "mix batch")
	defer timer.Stop()

	out := make([]types.WalletSchema, 0, len(in.Tasklist))
	for _, schema := range in.Tasklist {
		out = append(out, m.MixSchema(schema))
	}
	logging.Mixer("mixed %d wallet schemas (uid=%s)", len(out), in.UID())

	return types.Result{UID: in.UID(), Tasklist: out}, nil
}

// MixSchema normalizes, segments, shuffles and flattens one schema.
func (m *Mixer) MixSchema(schema types.WalletSchema) types.WalletSchema {
	segments := m.Plan(schema)
	mixed := Flatten(Shuffle(segments, m.shuffle))
	logging.Get(logging.CategoryMixer).StructuredLog("debug", "schema mixed", map[string]interface{}{
		"blocks":     len(mixed),
		"segments":   len(segments),
		"shufflable": countGroupable(segments),
	})
	return mixed
}

func countGroupable(segments []Segment) int {
	n := 0
	for _, seg := range segments {
		if seg.Kind == Groupable {
			n++
		}
	}
	return n
}

// Plan returns the pre-shuffle segments of the normalized schema.
func (m *Mixer) Plan(schema types.WalletSchema) []Segment {
	normalized := make([]types.Block, len(schema))
	for i, b := range schema {
		normalized[i] = m.norm.Normalize(b)
	}
	segments := Split(normalized, m.rules)
	logging.MixerDebug("planned %d segments over %d blocks", len(segments), len(normalized))
	return segments
}
