package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kozelmixer/internal/logging"
	"kozelmixer/internal/mixer"
	"kozelmixer/internal/types"
)

// newSegmentsCmd prints how each wallet would be split, without shuffling.
func newSegmentsCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "Show the fixed/groupable segments of every wallet",
		Long: `Normalizes each wallet of the input and prints its segment plan.
Groupable segments are the units the mixer would shuffle; fixed ones stay put.

Example:
  mixer segments -i input.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, o)
			if err != nil {
				return err
			}
			defer logging.CloseAll()

			batch, err := s.readBatch(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(batch.Tasklist) == 0 {
				return fmt.Errorf("%s: %w", emptyInputMessage, mixer.ErrEmptyInput)
			}
			m, _ := s.newMixer()
			printPlan(cmd.OutOrStdout(), m, batch)
			return nil
		},
	}
}

func printPlan(w io.Writer, m *mixer.Mixer, batch types.Batch) {
	fmt.Fprintf(w, "uid: %s\n", batch.UID())
	for i, schema := range batch.Tasklist {
		segments := m.Plan(schema)
		groups := 0
		for _, seg := range segments {
			if seg.Kind == mixer.Groupable {
				groups++
			}
		}
		fmt.Fprintf(w, "wallet %d: %d blocks, %d segments, %d shufflable\n", i, len(schema), len(segments), groups)
		for _, seg := range segments {
			label := seg.Kind.String()
			if seg.Kind == mixer.Groupable {
				label += ":" + seg.Key
			}
			fmt.Fprintf(w, "  [%s] %s\n", label, strings.Join(types.WalletSchema(seg.Blocks).Types(), ", "))
		}
	}
}
