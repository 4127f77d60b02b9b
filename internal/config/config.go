package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kozelmixer/internal/logging"
	"kozelmixer/internal/mixer"
)

// Config holds all mixer configuration.
type Config struct {
	// I/O locations ("-" means stdin/stdout)
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	ProxyFile string `yaml:"proxy_file"`

	// Block edits
	AngryMode bool `yaml:"angry_mode"`
	UseProxy  bool `yaml:"use_proxy"`

	// Gas boost bounds. A nil bound was not configured; injection is
	// enabled once either bound is set.
	GasBoostMin *int64 `yaml:"gas_boost_min,omitempty"`
	GasBoostMax *int64 `yaml:"gas_boost_max,omitempty"`

	// Seed makes a run reproducible. Nil seeds from the clock.
	Seed *int64 `yaml:"seed,omitempty"`

	Grouping GroupingConfig `yaml:"grouping"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GroupingConfig overrides the grouping rule table. A block type listed in
// Join must not also have a rule in Rules; Validate rejects such a table.
type GroupingConfig struct {
	Rules []GroupRuleConfig `yaml:"rules,omitempty"`
	// Join is nil when unset; an explicit empty list disables joining.
	Join []string `yaml:"join,omitempty"`
}

// GroupRuleConfig is one entry of the grouping table.
type GroupRuleConfig struct {
	Block    string `yaml:"block"`
	Field    string `yaml:"field,omitempty"`
	Constant string `yaml:"constant,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Input:     "input.json",
		Output:    "output.json",
		ProxyFile: "proxies.txt",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
			logging.ConfigDebug("loaded config file %s", path)
		case os.IsNotExist(err):
			logging.ConfigDebug("config file %s not found, using defaults", path)
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without replacing variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v, ok := lookupBool("ANGRY_MODE"); ok {
		c.AngryMode = v
	}
	if v, ok := lookupBool("USE_PROXY"); ok {
		c.UseProxy = v
	}
	if v, ok := lookupInt("GAS_BOOST_MIN"); ok {
		c.GasBoostMin = &v
	}
	if v, ok := lookupInt("GAS_BOOST_MAX"); ok {
		c.GasBoostMax = &v
	}
	if v, ok := lookupInt("MIXER_SEED"); ok {
		c.Seed = &v
	}
	if path := os.Getenv("PROXY_FILE"); path != "" {
		c.ProxyFile = path
	}
}

// lookupBool reads key as a boolean. Only "true" (any case) is true; an
// unset or empty variable reports ok=false.
func lookupBool(key string) (value bool, ok bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return false, false
	}
	return strings.EqualFold(strings.TrimSpace(raw), "true"), true
}

func lookupInt(key string) (int64, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		logging.ConfigDebug("ignoring %s=%q: %v", key, raw, err)
		return 0, false
	}
	return v, true
}

// MixOptions resolves the explicit option value handed to the mixer.
func (c *Config) MixOptions() (mixer.Options, error) {
	opts := mixer.Options{
		AngryMode: c.AngryMode,
		UseProxy:  c.UseProxy,
		GasBoost:  c.GasBoostMin != nil || c.GasBoostMax != nil,
		GasMin:    mixer.DefaultGasMin,
		GasMax:    mixer.DefaultGasMax,
	}
	// A single configured bound drags the default side along with it.
	switch {
	case c.GasBoostMin != nil && c.GasBoostMax != nil:
		opts.GasMin, opts.GasMax = *c.GasBoostMin, *c.GasBoostMax
	case c.GasBoostMin != nil:
		opts.GasMin = *c.GasBoostMin
		if opts.GasMin > opts.GasMax {
			opts.GasMax = opts.GasMin
		}
	case c.GasBoostMax != nil:
		opts.GasMax = *c.GasBoostMax
		if opts.GasMax < opts.GasMin {
			opts.GasMin = opts.GasMax
		}
	}

	if opts.GasMin < 0 || opts.GasMax < 0 {
		return mixer.Options{}, fmt.Errorf("gas boost bounds must not be negative (min=%d, max=%d)", opts.GasMin, opts.GasMax)
	}
	if opts.GasMin > opts.GasMax {
		return mixer.Options{}, fmt.Errorf("gas_boost_min (%d) exceeds gas_boost_max (%d)", opts.GasMin, opts.GasMax)
	}
	return opts, nil
}

// Rules builds the grouping table, falling back to the built-in defaults.
func (c *Config) Rules() (*mixer.Rules, error) {
	groups := mixer.DefaultGroupRules()
	if len(c.Grouping.Rules) > 0 {
		groups = make([]mixer.GroupRule, len(c.Grouping.Rules))
		for i, r := range c.Grouping.Rules {
			groups[i] = mixer.GroupRule{Block: r.Block, Field: r.Field, Constant: r.Constant}
		}
	}
	join := mixer.DefaultJoinBlocks()
	if c.Grouping.Join != nil {
		join = c.Grouping.Join
	}
	rules, err := mixer.NewRules(groups, join)
	if err != nil {
		return nil, fmt.Errorf("invalid grouping config: %w", err)
	}
	return rules, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path is required")
	}
	if _, err := c.MixOptions(); err != nil {
		return err
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	return nil
}
