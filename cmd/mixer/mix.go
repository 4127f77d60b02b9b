package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kozelmixer/internal/config"
	"kozelmixer/internal/logging"
	"kozelmixer/internal/mixer"
	"kozelmixer/internal/proxy"
	"kozelmixer/internal/rng"
	"kozelmixer/internal/types"
)

// stdio marks stdin/stdout in place of a path.
const stdio = "-"

// resolvePath anchors relative paths at --workdir.
func (o *cliOptions) resolvePath(p string) string {
	if p == "" || p == stdio || filepath.IsAbs(p) || o.workdir == "" {
		return p
	}
	return filepath.Join(o.workdir, p)
}

func (o *cliOptions) baseDir() string {
	if o.workdir != "" {
		return o.workdir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// resolveConfig layers defaults, YAML, dotenv/environment and changed flags.
func resolveConfig(cmd *cobra.Command, o *cliOptions) (*config.Config, error) {
	if err := config.LoadEnvFile(o.resolvePath(o.envFile)); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.resolvePath(o.configPath))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = o.inputPath
	}
	if flags.Changed("output") {
		cfg.Output = o.outputPath
	}
	if flags.Changed("proxies") {
		cfg.ProxyFile = o.proxyFile
	}
	if flags.Changed("angry") {
		cfg.AngryMode = o.angry
	}
	if flags.Changed("use-proxy") {
		cfg.UseProxy = o.useProxy
	}
	if flags.Changed("gas-min") {
		v := o.gasMin
		cfg.GasBoostMin = &v
	}
	if flags.Changed("gas-max") {
		v := o.gasMax
		cfg.GasBoostMax = &v
	}
	if flags.Changed("seed") {
		v := o.seed
		cfg.Seed = &v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session holds what one command needs to mix repeatedly.
type session struct {
	cfg     *config.Config
	opts    *cliOptions
	mixOpts mixer.Options
	rules   *mixer.Rules
	pool    *proxy.Pool
	logger  *zap.Logger
}

// newMixer builds a mixer over fresh rng streams, so every run with a
// fixed seed starts from the same state.
func (s *session) newMixer() (*mixer.Mixer, *rng.Factory) {
	src := rng.New(rng.Real, 0)
	if s.cfg.Seed != nil {
		src = rng.New(rng.Deterministic, *s.cfg.Seed)
	}
	return mixer.New(s.mixOpts, s.rules, src, s.pool), src
}

func newSession(cmd *cobra.Command, o *cliOptions) (*session, error) {
	cfg, err := resolveConfig(cmd, o)
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(o.baseDir(), cfg.Logging.Options()); err != nil {
		return nil, err
	}

	mixOpts, err := cfg.MixOptions()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	var pool *proxy.Pool
	if mixOpts.UseProxy {
		pool = proxy.LoadOrEmpty(o.resolvePath(cfg.ProxyFile))
		if pool.Len() == 0 {
			o.logger.Warn("Proxy injection enabled but no proxies loaded", zap.String("path", cfg.ProxyFile))
		}
	}

	o.logger.Debug("Configuration resolved",
		zap.Bool("angry_mode", mixOpts.AngryMode),
		zap.Bool("gas_boost", mixOpts.GasBoost),
		zap.Int64("gas_min", mixOpts.GasMin),
		zap.Int64("gas_max", mixOpts.GasMax),
		zap.Bool("use_proxy", mixOpts.UseProxy),
		zap.Int("proxies", pool.Len()))

	return &session{
		cfg:     cfg,
		opts:    o,
		mixOpts: mixOpts,
		rules:   rules,
		pool:    pool,
		logger:  o.logger,
	}, nil
}

func runMix(cmd *cobra.Command, o *cliOptions) error {
	if !o.noBanner {
		printBanner(cmd.ErrOrStderr())
	}
	s, err := newSession(cmd, o)
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	return s.mixOnce(cmd.InOrStdin(), cmd.OutOrStdout())
}

// mixOnce reads the input, mixes it and writes the result.
func (s *session) mixOnce(stdin io.Reader, stdout io.Writer) error {
	runID := uuid.NewString()[:8]
	log := s.logger.With(zap.String("run_id", runID))

	batch, err := s.readBatch(stdin)
	if err != nil {
		return err
	}

	m, src := s.newMixer()
	log.Debug("Random source", zap.Stringer("rng_mode", src.Mode()), zap.Int64("seed", src.Seed()))

	res, err := m.Mix(batch)
	if err != nil {
		if errors.Is(err, mixer.ErrEmptyInput) {
			return fmt.Errorf("%s: %w", emptyInputMessage, err)
		}
		return fmt.Errorf("mix failed: %w", err)
	}

	if err := s.writeResult(stdout, res); err != nil {
		return err
	}

	log.Info("Mixed wallet schemas",
		zap.String("uid", res.UID),
		zap.Int("wallets", len(res.Tasklist)),
		zap.String("output", s.cfg.Output))
	return nil
}

func (s *session) readBatch(stdin io.Reader) (types.Batch, error) {
	if s.cfg.Input == stdio {
		return types.DecodeBatch(stdin)
	}
	path := s.opts.resolvePath(s.cfg.Input)
	f, err := os.Open(path)
	if err != nil {
		return types.Batch{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return types.DecodeBatch(f)
}

func (s *session) writeResult(stdout io.Writer, res types.Result) error {
	if s.cfg.Output == stdio {
		return types.EncodeResult(stdout, res)
	}
	path := s.opts.resolvePath(s.cfg.Output)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Readers of path only ever see a complete export.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mixer-*.json")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	_ = tmp.Chmod(0644)
	if err := types.EncodeResult(tmp, res); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
