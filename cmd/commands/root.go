// Package commands implements the taskhub command line.
package commands

import (
	"fmt"

	"github.com/satvikmishra44/taskhub/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "taskhub",
		Short:         "Task assignment service with role based access",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (default ./config.yaml)")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newSeedAdminCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
