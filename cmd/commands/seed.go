package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/service"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/spf13/cobra"
)

func newSeedAdminCommand(opts *rootOptions) *cobra.Command {
	var seed config.SeedAdmin

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Args:  cobra.NoArgs,
		Short: "Create or promote the administrator account",
		Long: `Create the administrator account, or promote an existing user with
the same email. Flags override auth.seed_admin from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			merged := mergeSeed(cfg.Auth.SeedAdmin, &seed)
			if merged.Email == "" {
				return fmt.Errorf("an email is required, pass --email or set auth.seed_admin.email")
			}

			cleanupLog, err := logger.New(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer cleanupLog()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			d, cleanup, err := data.New(ctx, cfg.Data)
			if err != nil {
				return fmt.Errorf("failed to create data layer: %w", err)
			}
			defer cleanup()

			svc := service.New(&service.Options{Data: d, Auth: cfg.Auth, Attachment: cfg.Attachment})
			user, created, err := svc.Auth.SeedAdmin(ctx, merged)
			if err != nil {
				return err
			}

			status := "unchanged"
			if created {
				status = "provisioned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s %s (%s)\n", user.Email, status, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed.Email, "email", "", "administrator email")
	cmd.Flags().StringVar(&seed.Name, "name", "", "display name for a new administrator")
	cmd.Flags().StringVar(&seed.Password, "password", "", "password for a new administrator")
	return cmd
}

// mergeSeed overlays non-empty flag values on the configured seed
func mergeSeed(base, flags *config.SeedAdmin) *config.SeedAdmin {
	out := config.SeedAdmin{}
	if base != nil {
		out = *base
	}
	if flags.Email != "" {
		out.Email = flags.Email
	}
	if flags.Name != "" {
		out.Name = flags.Name
	}
	if flags.Password != "" {
		out.Password = flags.Password
	}
	return &out
}
