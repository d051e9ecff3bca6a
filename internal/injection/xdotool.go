package injection

import (
	"context"
	"fmt"
	"os"
	"time"
	"unicode/utf8"
)

type xdotoolBackend struct {
	timeout time.Duration
}

func NewXdotool(timeout time.Duration) Keyboard {
	return &xdotoolBackend{timeout: timeout}
}

func (x *xdotoolBackend) Name() string {
	return "xdotool"
}

func (x *xdotoolBackend) Available() error {
	if os.Getenv("DISPLAY") == "" {
		return fmt.Errorf("xdotool requires an X11 display (DISPLAY unset)")
	}
	return checkBinary("xdotool", "xdotool")
}

func (x *xdotoolBackend) TypeText(ctx context.Context, text string, interval time.Duration) error {
	timeout := commandTimeout(x.timeout, utf8.RuneCountInString(text), interval)
	return runCommand(ctx, timeout, "xdotool", "type", "--delay", delayMillis(interval), "--", text)
}

func (x *xdotoolBackend) PressKey(ctx context.Context, key string, interval time.Duration) error {
	return x.PressKeys(ctx, []string{key}, interval)
}

func (x *xdotoolBackend) PressKeys(ctx context.Context, names []string, interval time.Duration) error {
	if len(names) == 0 {
		return nil
	}
	args := []string{"key", "--delay", delayMillis(interval)}
	for _, name := range names {
		sym, err := keysym(name)
		if err != nil {
			return fmt.Errorf("xdotool: %w", err)
		}
		args = append(args, sym)
	}
	return runCommand(ctx, commandTimeout(x.timeout, len(names), interval), "xdotool", args...)
}
