package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// emptyInputMessage is printed when the export holds no wallets.
const emptyInputMessage = "Input json is empty: please export json from KOZEL"

// cliOptions carries the flag values of one command tree.
type cliOptions struct {
	verbose    bool
	workdir    string
	configPath string
	envFile    string
	inputPath  string
	outputPath string
	proxyFile  string
	seed       int64
	angry      bool
	useProxy   bool
	gasMin     int64
	gasMax     int64
	noBanner   bool

	logger *zap.Logger
}

// newRootCmd builds the command tree. A nil logger is created from flags
// before the first command runs.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := &cliOptions{logger: logger}

	rootCmd := &cobra.Command{
		Use:   "mixer",
		Short: "Shuffle KOZEL wallet task lists while keeping their structure",
		Long: `mixer reads a KOZEL export, splits every wallet's block list into fixed
blocks and groupable runs (swaps, reqRpc/saveVar by symbol, anyExecute by dex,
with delays riding along), and shuffles the runs among their own slots.

Fixed blocks never move and no run is reordered internally.

Configuration is layered: defaults, --config YAML, .env and environment
(ANGRY_MODE, GAS_BOOST_MIN, GAS_BOOST_MAX, USE_PROXY, PROXY_FILE, MIXER_SEED),
then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			opts.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMix(cmd, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVarP(&opts.workdir, "workdir", "w", "", "Directory relative paths resolve against (default: current)")
	pf.StringVarP(&opts.configPath, "config", "c", "mixer.yaml", "YAML config file (optional)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded into the environment (optional)")
	pf.StringVarP(&opts.inputPath, "input", "i", "", "Input KOZEL export, - for stdin (default: input.json)")
	pf.StringVarP(&opts.outputPath, "output", "o", "", "Output file, - for stdout (default: output.json)")
	pf.StringVar(&opts.proxyFile, "proxies", "", "Proxy list, one per line (default: proxies.txt)")
	pf.Int64Var(&opts.seed, "seed", 0, "Seed for a reproducible shuffle")
	pf.BoolVar(&opts.angry, "angry", false, "Set msg of every wallet block to angry_mode")
	pf.BoolVar(&opts.useProxy, "use-proxy", false, "Tag wallet blocks with a random proxy")
	pf.Int64Var(&opts.gasMin, "gas-min", 0, "Lower bound for anyExecute min_amount (enables gas boost)")
	pf.Int64Var(&opts.gasMax, "gas-max", 0, "Upper bound for anyExecute min_amount (enables gas boost)")
	pf.BoolVar(&opts.noBanner, "no-banner", false, "Do not print the banner")

	rootCmd.AddCommand(newSegmentsCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
