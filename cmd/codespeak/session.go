package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codespeak-dev/codespeak/internal/daemon"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

func testCmd() *cobra.Command {
	var flags sessionFlags
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Print transcripts instead of typing them",
		Long: `Start a session whose keyboard backend types nothing and print every
transcript. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags.overrides())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			s, err := daemon.Build(cfg, daemon.BuildOptions{Backend: "none"})
			if err != nil {
				return err
			}
			defer s.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = s.Start(ctx, func(text string) {
				fmt.Printf("Transcribed: %s\n", text)
			})
			if err != nil {
				return err
			}
			fmt.Printf("Press %s to start and stop recording, %s to cancel, Ctrl+C to quit.\n",
				keys.Canonical(cfg.Dictation.PushToTalkKey), keys.Canonical(cfg.Dictation.EscapeKey))

			<-ctx.Done()
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func runCmd() *cobra.Command {
	var (
		flags  sessionFlags
		binary string
	)
	cmd := &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Run a program with dictation available",
		Long: `Start a dictation session, run the configured program ([run] binary,
"claude" by default) in this terminal and stop the session when it exits.
The program's exit status is passed through.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(flags.overrides())
			if err != nil {
				return err
			}
			if binary != "" {
				cfg.Run.Binary = binary
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			path, err := exec.LookPath(cfg.Run.Binary)
			if err != nil {
				return fmt.Errorf("cannot find %s: %w", cfg.Run.Binary, err)
			}

			s, err := daemon.Build(cfg, daemon.BuildOptions{})
			if err != nil {
				return err
			}
			defer s.Stop()

			if err := s.Start(cmd.Context(), nil); err != nil {
				return err
			}
			return runChild(path, args)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&binary, "binary", "", "program to run instead of [run] binary")
	return cmd
}

// runChild runs the program attached to this terminal. Interrupts reach the
// child through the terminal, so this process only waits.
func runChild(path string, args []string) error {
	child := exec.Command(path, args...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", path, err)
	}

	logger := logging.For("run")
	done := make(chan error, 1)
	go func() { done <- child.Wait() }()

	for {
		select {
		case sig := <-sigs:
			// SIGINT already reached the child via the terminal.
			if sig == syscall.SIGTERM {
				child.Process.Signal(sig)
			}
			logger.Debug("forwarded signal", "signal", sig)
		case err := <-done:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code := exitErr.ExitCode()
				if code < 0 {
					code = 1
				}
				return &exitCodeError{code: code}
			}
			return err
		}
	}
}
