//go:build linux

package injection

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/micmonay/keybd_event"
)

type tapCall struct {
	code        int
	ctrl, shift bool
}

func newFakeClipboard(contents string) (*clipboardBackend, *[]string, *[]tapCall) {
	var writes []string
	var taps []tapCall
	c := &clipboardBackend{
		read: func() (string, error) { return contents, nil },
		write: func(s string) error {
			writes = append(writes, s)
			return nil
		},
		tap: func(code int, ctrl, shift bool) error {
			taps = append(taps, tapCall{code, ctrl, shift})
			return nil
		},
	}
	return c, &writes, &taps
}

func TestClipboardTypeTextRestores(t *testing.T) {
	c, writes, taps := newFakeClipboard("previous")

	if err := c.TypeText(context.Background(), "hello world ", 0); err != nil {
		t.Fatalf("TypeText() error = %v", err)
	}
	if want := []string{"hello world ", "previous"}; !reflect.DeepEqual(*writes, want) {
		t.Errorf("writes = %q, want %q", *writes, want)
	}
	if want := []tapCall{{keybd_event.VK_V, true, true}}; !reflect.DeepEqual(*taps, want) {
		t.Errorf("taps = %+v, want %+v", *taps, want)
	}
}

func TestClipboardUnreadableIsNotRestored(t *testing.T) {
	c, writes, _ := newFakeClipboard("")
	c.read = func() (string, error) { return "", errors.New("empty clipboard") }

	if err := c.TypeText(context.Background(), "text", 0); err != nil {
		t.Fatalf("TypeText() error = %v", err)
	}
	if len(*writes) != 1 {
		t.Errorf("writes = %q, want only the pasted text", *writes)
	}
}

func TestClipboardPasteFailure(t *testing.T) {
	c, writes, _ := newFakeClipboard("previous")
	c.tap = func(int, bool, bool) error { return errors.New("uinput closed") }

	if err := c.TypeText(context.Background(), "text", 0); err == nil {
		t.Fatal("TypeText() should fail when the paste chord fails")
	}
	if last := (*writes)[len(*writes)-1]; last != "previous" {
		t.Errorf("clipboard not restored, last write %q", last)
	}
}

func TestClipboardPressKeys(t *testing.T) {
	c, _, taps := newFakeClipboard("")

	if err := c.PressKeys(context.Background(), []string{"backspace", "backspace", "enter"}, time.Millisecond); err != nil {
		t.Fatalf("PressKeys() error = %v", err)
	}
	want := []tapCall{{14, false, false}, {14, false, false}, {28, false, false}}
	if !reflect.DeepEqual(*taps, want) {
		t.Errorf("taps = %+v, want %+v", *taps, want)
	}

	if err := c.PressKey(context.Background(), "vk_bogus", 0); err == nil {
		t.Error("PressKey() should reject a key without a code")
	}
}

func TestClipboardCancelled(t *testing.T) {
	c, writes, _ := newFakeClipboard("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.TypeText(ctx, "text", 0); !errors.Is(err, context.Canceled) {
		t.Errorf("TypeText() error = %v, want context.Canceled", err)
	}
	if len(*writes) != 0 {
		t.Error("nothing should be written after cancellation")
	}
}
