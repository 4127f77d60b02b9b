package mixer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"kozelmixer/internal/rng"
	"kozelmixer/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestMixer(opts Options, seed int64) *Mixer {
	return New(opts, nil, rng.New(rng.Deterministic, seed), nil)
}

func TestMixSingleSwapGroup(t *testing.T) {
	schema := types.WalletSchema{
		blk("wallet"),
		blk("swap", "from", "eth"),
		blk("swap", "from", "usdc"),
		blk("wallet"),
	}
	m := newTestMixer(Options{}, 1)

	plan := summarize(m.Plan(schema))
	want := []segSummary{
		{Kind: "fixed", Types: []string{"wallet"}},
		{Kind: "groupable", Key: "swap", Types: []string{"swap", "swap"}},
		{Kind: "fixed", Types: []string{"wallet"}},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}

	res, err := m.Mix(types.Batch{Tasklist: []types.WalletSchema{schema}})
	require.NoError(t, err)
	require.Len(t, res.Tasklist, 1)

	out := res.Tasklist[0]
	require.Len(t, out, 4)
	assert.Equal(t, "wallet", out[0].Type())
	assert.Equal(t, "wallet", out[3].Type())
	assert.Equal(t, "eth", out[1]["from"])
	assert.Equal(t, "usdc", out[2]["from"])
}

func TestMixTwoSymbolGroups(t *testing.T) {
	schema := types.WalletSchema{
		blk("reqRpc", "symbol", "ETH:123"),
		blk("reqRpc", "symbol", "BTC:456"),
	}

	plan := newTestMixer(Options{}, 1).Plan(schema)
	require.Len(t, plan, 2)
	assert.Equal(t, "eth", plan[0].Key)
	assert.Equal(t, "btc", plan[1].Key)

	orders := map[string]bool{}
	for seed := int64(0); seed < 40; seed++ {
		out := newTestMixer(Options{}, seed).MixSchema(schema)
		require.Len(t, out, 2)
		orders[out[0]["symbol"].(string)+"|"+out[1]["symbol"].(string)] = true
	}
	for order := range orders {
		assert.Contains(t, []string{"eth:123|btc:456", "btc:456|eth:123"}, order)
	}
	assert.Len(t, orders, 2, "both orders should occur across seeds")
}

func TestMixEmptyInput(t *testing.T) {
	m := newTestMixer(Options{}, 1)

	_, err := m.Mix(types.Batch{})
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = m.Mix(types.Batch{Asset: "x", Tasklist: []types.WalletSchema{}})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMixDelayJoinsSwapGroup(t *testing.T) {
	schema := types.WalletSchema{blk("wallet"), blk("swap"), blk("delay"), blk("wallet")}
	plan := summarize(newTestMixer(Options{}, 3).Plan(schema))

	want := []segSummary{
		{Kind: "fixed", Types: []string{"wallet"}},
		{Kind: "groupable", Key: "swap", Types: []string{"swap", "delay"}},
		{Kind: "fixed", Types: []string{"wallet"}},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestMixGasBoostExact(t *testing.T) {
	m := newTestMixer(Options{GasBoost: true, GasMin: 1000, GasMax: 1000}, 9)
	res, err := m.Mix(types.Batch{Tasklist: []types.WalletSchema{{blk("anyExecute", "dex", "Pancake:router")}}})
	require.NoError(t, err)
	assert.Equal(t, "1000", res.Tasklist[0][0]["min_amount"])
	assert.Equal(t, "pancake:router", res.Tasklist[0][0]["dex"])
}

func TestMixUID(t *testing.T) {
	m := newTestMixer(Options{}, 1)
	schemas := []types.WalletSchema{{blk("wallet")}}

	res, err := m.Mix(types.Batch{Tasklist: schemas})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultUID, res.UID)

	res, err = m.Mix(types.Batch{Asset: "bsc", Tasklist: schemas})
	require.NoError(t, err)
	assert.Equal(t, "bsc", res.UID)
}

func TestMixDeterministicWithSeed(t *testing.T) {
	batch := types.Batch{Tasklist: []types.WalletSchema{
		{blk("wallet"), blk("swap"), blk("wallet"), blk("reqRpc", "symbol", "a:1"), blk("wallet"), blk("anyExecute", "dex", "b:1")},
		{blk("reqRpc", "symbol", "a:1"), blk("reqRpc", "symbol", "b:1"), blk("reqRpc", "symbol", "c:1"), blk("swap")},
	}}
	opts := Options{GasBoost: true, GasMin: 10, GasMax: 10_000}

	r1, err := newTestMixer(opts, 2024).Mix(batch)
	require.NoError(t, err)
	r2, err := newTestMixer(opts, 2024).Mix(batch)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
}

func TestMixKeepsSchemaOrderAndEmptySchemas(t *testing.T) {
	batch := types.Batch{Tasklist: []types.WalletSchema{
		{blk("wallet", "name", "first")},
		{},
		{blk("wallet", "name", "third")},
	}}
	res, err := newTestMixer(Options{}, 1).Mix(batch)
	require.NoError(t, err)
	require.Len(t, res.Tasklist, 3)
	assert.Equal(t, "first", res.Tasklist[0][0]["name"])
	assert.Empty(t, res.Tasklist[1])
	assert.Equal(t, "third", res.Tasklist[2][0]["name"])
}

func TestMixDoesNotMutateInput(t *testing.T) {
	schema := types.WalletSchema{blk("wallet", "msg", "HELLO"), blk("swap", "symbol", "ETH")}
	_, err := newTestMixer(Options{AngryMode: true}, 1).Mix(types.Batch{Tasklist: []types.WalletSchema{schema}})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", schema[0]["msg"])
	assert.Equal(t, "ETH", schema[1]["symbol"])
}

func TestMixCustomRules(t *testing.T) {
	rules, err := NewRules([]GroupRule{{Block: "bridge", Field: "route"}}, []string{"delay", "log"})
	require.NoError(t, err)

	m := New(Options{}, rules, rng.New(rng.Deterministic, 1), nil)
	plan := summarize(m.Plan(types.WalletSchema{
		blk("swap"), blk("bridge", "route", "Stargate:eth"), blk("log"), blk("bridge", "route", "stargate:arb"),
	}))
	want := []segSummary{
		{Kind: "fixed", Types: []string{"swap"}},
		{Kind: "groupable", Key: "stargate", Types: []string{"bridge", "log", "bridge"}},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}
