package injection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Keyboard synthesizes keystrokes into the focused window.
// Key names are canonical identifiers from the keys package.
type Keyboard interface {
	Name() string
	Available() error
	TypeText(ctx context.Context, text string, interval time.Duration) error
	PressKey(ctx context.Context, key string, interval time.Duration) error
	PressKeys(ctx context.Context, keys []string, interval time.Duration) error
}

// Config for keyboard backends
type Config struct {
	Backends []string      // tried in order, first available wins
	Timeout  time.Duration // base timeout for one backend command
}

// DefaultConfig returns sensible defaults for injection
func DefaultConfig() Config {
	return Config{
		Backends: []string{"ydotool", "wtype", "xdotool"},
		Timeout:  5 * time.Second,
	}
}

// ValidBackends lists the backend names accepted by New.
var ValidBackends = []string{"ydotool", "wtype", "xdotool", "clipboard", "none"}

// New creates the named backend without checking availability.
func New(name string, timeout time.Duration) (Keyboard, error) {
	switch name {
	case "ydotool":
		return NewYdotool(timeout), nil
	case "wtype":
		return NewWtype(timeout), nil
	case "xdotool":
		return NewXdotool(timeout), nil
	case "clipboard":
		return NewClipboard(timeout), nil
	case "none":
		return NewNone(), nil
	default:
		return nil, fmt.Errorf("unsupported injection backend: %s", name)
	}
}

// Select returns the first configured backend that is available.
func Select(config Config) (Keyboard, error) {
	if len(config.Backends) == 0 {
		return nil, fmt.Errorf("no injection backends configured")
	}

	var errs []error
	for _, name := range config.Backends {
		kb, err := New(name, config.Timeout)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := kb.Available(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		return kb, nil
	}
	return nil, fmt.Errorf("no injection backend available: %w", errors.Join(errs...))
}

// commandTimeout scales the base timeout by the number of keystrokes so long
// utterances typed with a per-key delay are not cut off.
func commandTimeout(base time.Duration, keystrokes int, interval time.Duration) time.Duration {
	if base <= 0 {
		base = 5 * time.Second
	}
	return base + time.Duration(keystrokes)*interval
}

func delayMillis(interval time.Duration) string {
	if interval < 0 {
		interval = 0
	}
	return strconv.FormatInt(interval.Milliseconds(), 10)
}

func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func checkBinary(name, pkg string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found: %w (install %s)", name, err, pkg)
	}
	return nil
}
