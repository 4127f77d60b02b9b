package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleExport = `{
  "asset": "bsc-farm",
  "tasklist": [
    [
      {"block": "wallet", "msg": "Start"},
      {"block": "swap", "symbol": "BNB:1"},
      {"block": "delay", "ms": 1000},
      {"block": "reqRpc", "symbol": "CAKE:balance"},
      {"block": "anyExecute", "dex": "Pancake:router", "amount": "0.5"},
      {"block": "wallet", "msg": "End"}
    ]
  ]
}`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ANGRY_MODE", "USE_PROXY", "GAS_BOOST_MIN", "GAS_BOOST_MAX", "MIXER_SEED", "PROXY_FILE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(zap.NewNop())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-banner"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

type output struct {
	UID      string             `json:"uid"`
	Tasklist [][]map[string]any `json:"tasklist"`
}

func readOutput(t *testing.T, path string) output {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var o output
	require.NoError(t, json.Unmarshal(data, &o))
	return o
}

func TestMixWritesOutputFile(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "input.json"), []byte(sampleExport), 0644))

	_, err := runCLI(t, "", "--workdir", ws, "--seed", "7", "--gas-min", "1000", "--gas-max", "1000", "--angry")
	require.NoError(t, err)

	o := readOutput(t, filepath.Join(ws, "output.json"))
	assert.Equal(t, "bsc-farm", o.UID)
	require.Len(t, o.Tasklist, 1)

	blocks := o.Tasklist[0]
	require.Len(t, blocks, 6)
	assert.Equal(t, "wallet", blocks[0]["block"])
	assert.Equal(t, "angry_mode", blocks[0]["msg"])
	assert.Equal(t, "wallet", blocks[5]["block"])

	for _, b := range blocks {
		if b["block"] == "anyExecute" {
			assert.Equal(t, "1000", b["min_amount"])
			assert.Equal(t, "pancake:router", b["dex"])
			assert.Equal(t, 0.5, b["amount"])
		}
	}
}

func TestMixStdinToStdoutIsReproducible(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()

	first, err := runCLI(t, sampleExport, "-w", ws, "-i", "-", "-o", "-", "--seed", "99")
	require.NoError(t, err)
	second, err := runCLI(t, sampleExport, "-w", ws, "-i", "-", "-o", "-", "--seed", "99")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, `"uid": "bsc-farm"`)
}

func TestMixEmptyInput(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()

	_, err := runCLI(t, "[]", "-w", ws, "-i", "-", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), emptyInputMessage)

	_, statErr := os.Stat(filepath.Join(ws, "output.json"))
	assert.True(t, os.IsNotExist(statErr), "no output should be written for empty input")
}

func TestMixMissingInput(t *testing.T) {
	clearEnv(t)
	_, err := runCLI(t, "", "-w", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input")
}

func TestMixInvalidGasRange(t *testing.T) {
	clearEnv(t)
	_, err := runCLI(t, sampleExport, "-w", t.TempDir(), "-i", "-", "-o", "-", "--gas-min", "10", "--gas-max", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestMixUsesEnvFileAndProxies(t *testing.T) {
	clearEnv(t)

	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"), []byte("USE_PROXY=true\nGAS_BOOST_MIN=1\nGAS_BOOST_MAX=1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "proxies.txt"), []byte("10.0.0.1:8080\n"), 0644))

	out, err := runCLI(t, sampleExport, "-w", ws, "-i", "-", "-o", "-", "--seed", "1")
	require.NoError(t, err)

	var o output
	require.NoError(t, json.Unmarshal([]byte(out), &o))
	for _, b := range o.Tasklist[0] {
		switch b["block"] {
		case "wallet":
			assert.Equal(t, "http://10.0.0.1:8080", b["proxy"])
		case "anyExecute":
			assert.Equal(t, "1", b["min_amount"])
		}
	}
}

func TestRepeatedMixesWithSeedMatch(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIXER_SEED", "5")

	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "input.json"), []byte(sampleExport), 0644))

	o := &cliOptions{workdir: ws, configPath: "mixer.yaml", envFile: ".env", logger: zap.NewNop()}
	s, err := newSession(&cobra.Command{}, o)
	require.NoError(t, err)

	outPath := filepath.Join(ws, "output.json")
	require.NoError(t, s.mixOnce(nil, nil))
	first, err := os.ReadFile(outPath)
	require.NoError(t, err)

	require.NoError(t, s.mixOnce(nil, nil))
	second, err := os.ReadFile(outPath)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	oneShot, err := runCLI(t, "", "-w", ws, "-o", "-", "--seed", "5")
	require.NoError(t, err)
	assert.Equal(t, string(first), oneShot)
}

func TestSegmentsCommand(t *testing.T) {
	clearEnv(t)
	out, err := runCLI(t, sampleExport, "segments", "-w", t.TempDir(), "-i", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "uid: bsc-farm")
	assert.Contains(t, out, "wallet 0: 6 blocks, 5 segments, 3 shufflable")
	assert.Contains(t, out, "[fixed] wallet")
	assert.Contains(t, out, "[groupable:swap] swap, delay")
	assert.Contains(t, out, "[groupable:cake] reqRpc")
	assert.Contains(t, out, "[groupable:pancake] anyExecute")
}

func TestConfigCommand(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()

	out, err := runCLI(t, "", "config", "-w", ws, "--gas-min", "1234")
	require.NoError(t, err)
	assert.Contains(t, out, "gas_boost_min: 1234")

	_, err = runCLI(t, "", "config", "-w", ws, "--angry", "--write", "mixer.yaml")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(ws, "mixer.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "angry_mode: true")

	out, err = runCLI(t, "", "config", "-w", ws)
	require.NoError(t, err)
	assert.Contains(t, out, "angry_mode: true", "saved config should be picked up")
}

func TestBanner(t *testing.T) {
	assert.Contains(t, renderBanner(), "Kozel Mixer")
}
