package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/daemon"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

func serveCmd() *cobra.Command {
	var flags sessionFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dictation daemon",
		Long: `Run a dictation session in the foreground and serve the control socket.
The configuration file is watched and the session restarts when it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if err := config.LoadEnv(path); err != nil {
				return err
			}
			m, err := config.NewManager(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := m.SetOverrides(flags.overrides()); err != nil {
				return err
			}
			cfg := m.GetConfig()
			logging.Init(cfg.ToLoggingConfig())
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			d, err := daemon.New(m, daemon.WithVersion(version))
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run(context.Background())
		},
	}
	flags.register(cmd)
	return cmd
}
