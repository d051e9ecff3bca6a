package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codespeak-dev/codespeak/internal/bus"
	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/deps"
	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/recording"
	"github.com/codespeak-dev/codespeak/internal/tui"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, devices and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(config.Overrides{LogLevel: globals.level()})
			if err != nil {
				return err
			}
			return runDoctor(cmd.Context(), cfg, path)
		},
	}
}

func runDoctor(ctx context.Context, cfg *config.Config, path string) error {
	ok := tui.StyleSuccess.Render("✓")
	bad := tui.StyleError.Render("✗")
	warn := tui.StyleWarning.Render("!")
	problems := 0

	fmt.Println(tui.StyleHeader.Render("Tools"))
	for _, r := range deps.CheckAll() {
		if r.Status.Installed {
			detail := r.Status.Path
			if r.Status.Version != "" {
				detail += " (" + r.Status.Version + ")"
			}
			fmt.Printf("  %s %-12s %s\n", ok, r.Tool.Name, tui.StyleMuted.Render(detail))
		} else {
			fmt.Printf("  %s %-12s %s\n", warn, r.Tool.Name, tui.StyleMuted.Render("not found: "+r.Tool.Purpose))
		}
	}

	fmt.Println()
	fmt.Println(tui.StyleHeader.Render("Environment"))

	pwCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := recording.CheckPipeWire(pwCtx); err != nil {
		fmt.Printf("  %s PipeWire: %v\n", bad, err)
		problems++
	} else {
		fmt.Printf("  %s PipeWire reachable\n", ok)
	}
	cancel()

	if cfg.Hotkey.Source == hotkey.SourceEvdev {
		devices, err := keyboardDevices(cfg.Hotkey.Devices, hotkey.FindKeyboards)
		switch {
		case err != nil:
			fmt.Printf("  %s keyboards: %v\n", bad, err)
			problems++
		case len(devices) == 0:
			fmt.Printf("  %s no keyboard devices found\n", bad)
			problems++
		default:
			for _, dev := range devices {
				f, err := os.Open(dev)
				if err != nil {
					fmt.Printf("  %s %s: %v (is your user in the input group?)\n", bad, dev, err)
					problems++
					continue
				}
				f.Close()
				fmt.Printf("  %s %s readable\n", ok, dev)
			}
		}
	} else {
		fmt.Printf("  %s hotkeys arrive through codespeak press\n", ok)
	}

	if resp, err := bus.SendCommand(bus.CmdStatus, ""); err == nil {
		fmt.Printf("  %s daemon running: %s\n", ok, resp)
	} else {
		fmt.Printf("  %s daemon not running\n", warn)
	}

	fmt.Println()
	fmt.Println(tui.StyleHeader.Render("Configuration"))
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %s %s: %v\n", bad, path, err)
		problems++
	} else {
		fmt.Printf("  %s %s\n", ok, path)
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	return nil
}

// keyboardDevices returns the configured devices, or the detected keyboards
// when none are configured.
func keyboardDevices(configured []string, find func() ([]string, error)) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}
	return find()
}
