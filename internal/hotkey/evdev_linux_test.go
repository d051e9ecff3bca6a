//go:build linux

package hotkey

import (
	"bytes"
	"io"
	"testing"

	"github.com/codespeak-dev/codespeak/internal/keys"
)

func TestReadPresses(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(encodeEvent(evKey, 67, keyDown)) // f9
	stream.Write(encodeEvent(0, 0, 0))
	stream.Write(encodeEvent(evKey, 67, keyRepeat))
	stream.Write(encodeEvent(evKey, 67, keyUp))
	stream.Write(encodeEvent(evKey, 1, keyDown))   // esc
	stream.Write(encodeEvent(evKey, 300, keyDown)) // unknown

	var got []string
	err := readPresses(&stream, func(k keys.Key) bool {
		got = append(got, k.String())
		return true
	})
	if err != io.EOF {
		t.Fatalf("readPresses() error = %v, want EOF", err)
	}

	want := []string{"f9", "esc", "vk_300"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("press %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadPressesStopsWhenAsked(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(encodeEvent(evKey, 67, keyDown))
	stream.Write(encodeEvent(evKey, 1, keyDown))

	n := 0
	err := readPresses(&stream, func(keys.Key) bool {
		n++
		return false
	})
	if err != nil || n != 1 {
		t.Errorf("readPresses() = %v after %d presses, want nil after 1", err, n)
	}
}
