package injection

import (
	"context"
	"fmt"
	"os"
	"time"
	"unicode/utf8"
)

// wtype uses the virtual-keyboard protocol, wlroots compositors only.
type wtypeBackend struct {
	timeout time.Duration
}

func NewWtype(timeout time.Duration) Keyboard {
	return &wtypeBackend{timeout: timeout}
}

func (w *wtypeBackend) Name() string {
	return "wtype"
}

func (w *wtypeBackend) Available() error {
	if os.Getenv("WAYLAND_DISPLAY") == "" {
		return fmt.Errorf("wtype requires a Wayland session (WAYLAND_DISPLAY unset)")
	}
	return checkBinary("wtype", "wtype")
}

func (w *wtypeBackend) TypeText(ctx context.Context, text string, interval time.Duration) error {
	timeout := commandTimeout(w.timeout, utf8.RuneCountInString(text), interval)
	return runCommand(ctx, timeout, "wtype", "-d", delayMillis(interval), "--", text)
}

func (w *wtypeBackend) PressKey(ctx context.Context, key string, interval time.Duration) error {
	return w.PressKeys(ctx, []string{key}, interval)
}

func (w *wtypeBackend) PressKeys(ctx context.Context, names []string, interval time.Duration) error {
	if len(names) == 0 {
		return nil
	}
	args := []string{"-d", delayMillis(interval)}
	for _, name := range names {
		sym, err := keysym(name)
		if err != nil {
			return fmt.Errorf("wtype: %w", err)
		}
		args = append(args, "-k", sym)
	}
	return runCommand(ctx, commandTimeout(w.timeout, len(names), interval), "wtype", args...)
}
