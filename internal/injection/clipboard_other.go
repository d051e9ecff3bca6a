//go:build !linux

package injection

import (
	"context"
	"errors"
	"time"
)

var errClipboardUnsupported = errors.New("clipboard backend requires linux")

type clipboardBackend struct{}

func NewClipboard(timeout time.Duration) Keyboard { return clipboardBackend{} }

func (clipboardBackend) Name() string { return "clipboard" }

func (clipboardBackend) Available() error { return errClipboardUnsupported }

func (clipboardBackend) TypeText(context.Context, string, time.Duration) error {
	return errClipboardUnsupported
}

func (clipboardBackend) PressKey(context.Context, string, time.Duration) error {
	return errClipboardUnsupported
}

func (clipboardBackend) PressKeys(context.Context, []string, time.Duration) error {
	return errClipboardUnsupported
}
