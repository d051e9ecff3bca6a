package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/tui"
)

func configureCmd() *cobra.Command {
	var onboarding bool
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration for codespeak: push-to-talk and cancel keys
(captured from the keyboard), dictation behaviour, transcription provider,
typing backends, hotkey source and notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("configure needs an interactive terminal; edit the config file instead")
			}
			path, err := configPath()
			if err != nil {
				return err
			}
			if err := config.LoadEnv(path); err != nil {
				return err
			}
			cfg, found, err := config.LoadOrDefault(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			opts := tui.Options{Fresh: onboarding || !found}
			if cfg.Hotkey.Source == hotkey.SourceEvdev {
				devices := cfg.Hotkey.Devices
				opts.Capture = func(ctx context.Context) (string, error) {
					return captureKey(ctx, devices)
				}
			}

			result, err := tui.Run(cfg, opts)
			if err != nil {
				return fmt.Errorf("configuration wizard error: %w", err)
			}
			if result.Cancelled {
				fmt.Println("Configuration cancelled.")
				return nil
			}
			if err := result.Config.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if err := result.Config.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Println()
			fmt.Println(tui.StyleSuccess.Render("Configuration saved to " + path))
			showNextSteps(result.Config)
			return nil
		},
	}
	cmd.Flags().BoolVar(&onboarding, "onboarding", false, "run the guided first-time setup")
	return cmd
}

func showNextSteps(cfg *config.Config) {
	fmt.Println()
	fmt.Println("Next steps:")
	step := 1
	if slices.Contains(cfg.Injection.Backends, "ydotool") {
		fmt.Printf("%d. Ensure ydotoold is running\n", step)
		step++
	}
	fmt.Printf("%d. Check the environment: codespeak doctor\n", step)
	step++
	fmt.Printf("%d. Try it without typing anywhere: codespeak test\n", step)
	step++
	if cfg.Hotkey.Source == hotkey.SourceSocket {
		fmt.Printf("%d. Bind a compositor key to: codespeak press %s\n", step, keys.Canonical(cfg.Dictation.PushToTalkKey))
		step++
	}
	fmt.Printf("%d. Start the daemon: codespeak serve\n", step)
}

func configCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the config path and the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, found, err := config.LoadOrDefault(path)
			if err != nil {
				return err
			}
			out, err := cfg.Render(format)
			if err != nil {
				return err
			}

			header := lipgloss.NewStyle().Bold(true).Render("Config file: ") + path
			if !found {
				header += tui.StyleMuted.Render(" (not created yet, showing defaults)")
			}
			fmt.Fprintln(os.Stderr, header)
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(os.Stderr, tui.StyleWarning.Render("Invalid: "+err.Error()))
			}
			fmt.Fprintln(os.Stderr)
			os.Stdout.Write(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", config.FormatTOML, "output format: toml or yaml")
	return cmd
}

func keysCmd() *cobra.Command {
	var devices []string
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Print the identifier of the next key pressed",
		Long: `Wait for one key press on the keyboard devices and print its identifier,
ready to paste into push_to_talk_key or escape_key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(devices) == 0 {
				cfg, _, err := loadConfig(config.Overrides{LogLevel: globals.level()})
				if err != nil {
					return err
				}
				devices = cfg.Hotkey.Devices
			}
			fmt.Fprintln(os.Stderr, "Press a key...")
			key, err := captureKey(cmd.Context(), devices)
			if err != nil {
				return err
			}
			fmt.Println(key)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&devices, "device", nil, "evdev device to read (default: all keyboards)")
	return cmd
}

// captureKey reads one key press. The terminal is put in raw mode meanwhile
// so the key is not echoed.
func captureKey(ctx context.Context, devices []string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if state, err := term.MakeRaw(fd); err == nil {
			defer term.Restore(fd, state)
		}
	}
	return hotkey.Capture(ctx, devices)
}
