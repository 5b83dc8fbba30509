package commands

import (
	"os/signal"
	"syscall"

	"github.com/satvikmishra44/taskhub/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Args:    cobra.NoArgs,
		Short:   "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, cleanup, err := server.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return app.Run(ctx)
		},
	}
}
