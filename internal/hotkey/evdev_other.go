//go:build !linux

package hotkey

import (
	"context"
	"fmt"
)

// Evdev is only available on Linux.
type Evdev struct{}

func NewEvdev(devices []string) *Evdev { return &Evdev{} }

func (e *Evdev) Register(bindings map[string]func()) error {
	return fmt.Errorf("evdev hotkeys not supported on this platform")
}

func (e *Evdev) Stop() error { return nil }

func FindKeyboards() ([]string, error) {
	return nil, fmt.Errorf("evdev hotkeys not supported on this platform")
}

func Capture(ctx context.Context, devices []string) (string, error) {
	return "", fmt.Errorf("key capture not supported on this platform")
}
