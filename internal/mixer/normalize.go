package mixer

import (
	"encoding/json"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"kozelmixer/internal/types"
)

// Gas price bounds used when a boost is enabled without explicit bounds.
const (
	DefaultGasMin int64 = 5_000_000_000
	DefaultGasMax int64 = 6_000_000_000
)

// AngryModeMsg replaces the msg of every wallet block in angry mode.
const AngryModeMsg = "angry_mode"

// Options is the explicit per-run configuration of the mixer.
type Options struct {
	AngryMode bool

	// GasBoost gates min_amount injection on anyExecute blocks.
	GasBoost bool
	GasMin   int64
	GasMax   int64

	UseProxy bool
}

// ProxyPicker supplies a proxy address for wallet blocks.
type ProxyPicker interface {
	Len() int
	Pick(r *rand.Rand) string
}

var lowerFields = []string{types.FieldSymbol, types.FieldDex, types.FieldMsg}

// Normalizer applies the per-block field edits.
type Normalizer struct {
	opts    Options
	gas     *rand.Rand
	proxy   *rand.Rand
	proxies ProxyPicker
}

// NewNormalizer creates a normalizer. proxies may be nil.
func NewNormalizer(opts Options, gas, proxy *rand.Rand, proxies ProxyPicker) *Normalizer {
	return &Normalizer{opts: opts, gas: gas, proxy: proxy, proxies: proxies}
}

// Normalize returns a new block with the edits applied; b is not modified.
func (n *Normalizer) Normalize(b types.Block) types.Block {
	out := b.Clone()

	for _, f := range lowerFields {
		if s, ok := out.String(f); ok {
			out[f] = strings.ToLower(s)
		}
	}

	if s, ok := out.String(types.FieldAmount); ok {
		if num, ok := coerceNumber(s); ok {
			out[types.FieldAmount] = num
		}
	}

	switch out.Type() {
	case types.BlockAnyExecute:
		if n.opts.GasBoost {
			out[types.FieldMinAmount] = strconv.FormatInt(n.gasPrice(), 10)
		}
	case types.BlockWallet:
		if n.opts.AngryMode {
			out[types.FieldMsg] = AngryModeMsg
		}
		if n.opts.UseProxy && n.proxies != nil && n.proxies.Len() > 0 {
			out[types.FieldProxy] = n.proxies.Pick(n.proxy)
		}
	}

	return out
}

// gasPrice draws uniformly from the inclusive range [GasMin, GasMax].
func (n *Normalizer) gasPrice() int64 {
	lo, hi := n.opts.GasMin, n.opts.GasMax
	if hi <= lo {
		return lo
	}
	span := hi - lo
	if span == math.MaxInt64 {
		return lo + n.gas.Int63()
	}
	return lo + n.gas.Int63n(span+1)
}

func coerceNumber(s string) (json.Number, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	// ParseFloat admits forms JSON does not (Inf, hex); json.Valid admits
	// literals that are not numbers (true, null).
	if _, err := strconv.ParseFloat(s, 64); err != nil || !json.Valid([]byte(s)) {
		return "", false
	}
	return json.Number(s), true
}
