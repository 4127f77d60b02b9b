package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kozelmixer/internal/logging"
	"kozelmixer/internal/watch"
)

// newWatchCmd re-mixes the input every time it is saved.
func newWatchCmd(o *cliOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-mix the input whenever it changes",
		Long: `Runs one mix immediately, then watches the input file and writes a fresh
output after every save. With --seed every run starts from the same random
state, so identical saves give identical output. Failed runs (empty or
malformed exports) are logged and the watch continues. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !o.noBanner {
				printBanner(cmd.ErrOrStderr())
			}
			s, err := newSession(cmd, o)
			if err != nil {
				return err
			}
			defer logging.CloseAll()

			if s.cfg.Input == stdio {
				return fmt.Errorf("watch needs an input file, not stdin")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.watch(ctx, debounce, cmd)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period after a change before re-mixing")
	return cmd
}

func (s *session) watch(ctx context.Context, debounce time.Duration, cmd *cobra.Command) error {
	mixLogged := func(context.Context) error {
		if err := s.mixOnce(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			s.logger.Warn("Mix failed, waiting for next change", zap.Error(err))
		}
		return nil
	}

	_ = mixLogged(ctx)

	input := s.opts.resolvePath(s.cfg.Input)
	s.logger.Info("Watching input", zap.String("path", input), zap.Duration("debounce", debounce))
	return watch.New(input, debounce, mixLogged).Run(ctx)
}
