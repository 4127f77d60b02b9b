package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// newConfigCmd prints or saves the effective configuration.
func newConfigCmd(o *cliOptions) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Resolves defaults, the config file, .env, environment and flags, then prints
the result. With --write the result is saved as a config file instead.

Example:
  mixer config --gas-min 5000000000 --write mixer.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o)
			if err != nil {
				return err
			}
			if writePath != "" {
				path := o.resolvePath(writePath)
				if err := cfg.Save(path); err != nil {
					return err
				}
				o.logger.Info("Config written", zap.String("path", path))
				return nil
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&writePath, "write", "", "Save the effective configuration to this file")
	return cmd
}
