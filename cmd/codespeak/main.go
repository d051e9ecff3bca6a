package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

var version = "dev"

// exitCodeError carries a wrapped program's exit status out of RunE.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	err := rootCmd.Execute()
	var exit *exitCodeError
	switch {
	case err == nil:
	case errors.As(err, &exit):
		os.Exit(exit.code)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "codespeak",
	Short:         "Push-to-talk dictation into the focused window",
	SilenceUsage:  true,
	SilenceErrors: true,
}

type globalFlags struct {
	configPath string
	logLevel   string
	debug      bool
}

var globals globalFlags

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globals.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/codespeak/config.toml)")
	pf.StringVar(&globals.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&globals.debug, "debug", false, "shorthand for --log-level debug")

	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		cancelCmd(),
		pressCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
		configCmd(),
		keysCmd(),
		testCmd(),
		runCmd(),
		doctorCmd(),
		modelsCmd(),
	)
}

func configPath() (string, error) {
	if globals.configPath != "" {
		return globals.configPath, nil
	}
	return config.GetConfigPath()
}

func (g globalFlags) level() string {
	if g.debug {
		return "debug"
	}
	return g.logLevel
}

// sessionFlags are the overrides accepted by commands that run a session.
type sessionFlags struct {
	key      string
	escape   string
	source   string
	provider string
	language string
	backends []string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.key, "key", "", "push-to-talk key")
	fl.StringVar(&f.escape, "escape-key", "", "key that cancels a recording")
	fl.StringVar(&f.source, "hotkey-source", "", "hotkey source: evdev or socket")
	fl.StringVar(&f.provider, "provider", "", "transcription provider: openai, groq, whisper-cpp")
	fl.StringVar(&f.language, "language", "", "spoken language (ISO-639-1, or auto)")
	fl.StringSliceVar(&f.backends, "backend", nil, "injection backends in order of preference")
}

func (f *sessionFlags) overrides() config.Overrides {
	return config.Overrides{
		PushToTalkKey: f.key,
		EscapeKey:     f.escape,
		HotkeySource:  f.source,
		Provider:      f.provider,
		Language:      f.language,
		Backends:      f.backends,
		LogLevel:      globals.level(),
	}
}

// loadConfig reads the .env and config files, falling back to the default
// config, and applies overrides. The logger is configured from the result.
func loadConfig(o config.Overrides) (*config.Config, string, error) {
	path, err := configPath()
	if err != nil {
		return nil, "", err
	}
	if err := config.LoadEnv(path); err != nil {
		return nil, "", err
	}
	cfg, _, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.ApplyOverrides(o); err != nil {
		return nil, "", err
	}
	logging.Init(cfg.ToLoggingConfig())
	return cfg, path, nil
}
