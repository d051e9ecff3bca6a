//go:build linux

package injection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"

	"github.com/codespeak-dev/codespeak/internal/keys"
)

// clipboardBackend pastes text through the clipboard from a uinput keyboard
// and restores the previous clipboard contents afterwards. Other keys are
// pressed on the same uinput device.
type clipboardBackend struct {
	settle time.Duration
	read   func() (string, error)
	write  func(string) error
	tap    func(code int, ctrl, shift bool) error

	once    sync.Once
	kb      *keybd_event.KeyBonding
	initErr error
}

const uinputSettle = 2 * time.Second

func NewClipboard(timeout time.Duration) Keyboard {
	c := &clipboardBackend{
		settle: 100 * time.Millisecond,
		read:   clipboard.ReadAll,
		write:  clipboard.WriteAll,
	}
	c.tap = c.uinputTap
	return c
}

func (c *clipboardBackend) Name() string { return "clipboard" }

func (c *clipboardBackend) Available() error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard needs wl-copy, xclip or xsel")
	}
	_, err := c.device()
	return err
}

func (c *clipboardBackend) device() (*keybd_event.KeyBonding, error) {
	c.once.Do(func() {
		kb, err := keybd_event.NewKeyBonding()
		if err != nil {
			c.initErr = fmt.Errorf("open uinput: %w", err)
			return
		}
		// The new device only receives events once udev has announced it.
		time.Sleep(uinputSettle)
		c.kb = &kb
	})
	return c.kb, c.initErr
}

func (c *clipboardBackend) uinputTap(code int, ctrl, shift bool) error {
	kb, err := c.device()
	if err != nil {
		return err
	}
	kb.Clear()
	kb.HasCTRL(ctrl)
	kb.HasSHIFT(shift)
	kb.SetKeys(code)
	return kb.Launching()
}

func (c *clipboardBackend) TypeText(ctx context.Context, text string, interval time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prev, readErr := c.read()
	if err := c.write(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if err := wait(ctx, c.settle); err != nil {
		return err
	}

	// Ctrl+Shift+V pastes in terminals and in most GUI toolkits.
	err := c.tap(keybd_event.VK_V, true, true)
	wait(ctx, c.settle)

	if readErr == nil {
		if rerr := c.write(prev); rerr != nil && err == nil {
			err = fmt.Errorf("restore clipboard: %w", rerr)
		}
	}
	return err
}

func (c *clipboardBackend) PressKey(ctx context.Context, key string, interval time.Duration) error {
	return c.PressKeys(ctx, []string{key}, interval)
}

func (c *clipboardBackend) PressKeys(ctx context.Context, names []string, interval time.Duration) error {
	codes := make([]int, len(names))
	for i, name := range names {
		code, ok := keys.EvdevCode(name)
		if !ok {
			return fmt.Errorf("clipboard: no key code for %q", name)
		}
		codes[i] = int(code)
	}
	for i, code := range codes {
		if i > 0 {
			if err := wait(ctx, interval); err != nil {
				return err
			}
		}
		if err := c.tap(code, false, false); err != nil {
			return fmt.Errorf("press %s: %w", names[i], err)
		}
	}
	return nil
}
