// Package keys defines the canonical key identifier shared by configuration,
// key capture during setup, hotkey dispatch and keystroke injection.
package keys

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Kind int

const (
	// Printable is a key that produces a single visible character.
	Printable Kind = iota
	// Named is a non-printable key with a symbolic name (f9, shift_r, esc).
	Named
	// RawCode is an unidentified key known only by its numeric code.
	RawCode
)

// Key is one physical key. Exactly one of Char, Name or Code is meaningful,
// selected by Kind.
type Key struct {
	Kind Kind
	Char rune
	Name string
	Code int
}

const rawPrefix = "vk_"

// Common named keys.
const (
	Backspace = "backspace"
	Enter     = "enter"
	Escape    = "esc"
	Space     = "space"
	Tab       = "tab"
)

// aliases maps alternate spellings onto canonical names.
var aliases = map[string]string{
	"escape":      "esc",
	"return":      "enter",
	"spacebar":    "space",
	"bksp":        "backspace",
	"back_space":  "backspace",
	"del":         "delete",
	"right_shift": "shift_r",
	"left_shift":  "shift_l",
	"rshift":      "shift_r",
	"lshift":      "shift_l",
	"right_ctrl":  "ctrl_r",
	"left_ctrl":   "ctrl_l",
	"rctrl":       "ctrl_r",
	"lctrl":       "ctrl_l",
	"control_r":   "ctrl_r",
	"control_l":   "ctrl_l",
	"right_alt":   "alt_r",
	"left_alt":    "alt_l",
	"altgr":       "alt_gr",
	"super":       "cmd",
	"meta":        "cmd",
	"win":         "cmd",
	"super_l":     "cmd_l",
	"super_r":     "cmd_r",
	"pgup":        "page_up",
	"pageup":      "page_up",
	"pgdn":        "page_down",
	"pagedown":    "page_down",
	"capslock":    "caps_lock",
	"numlock":     "num_lock",
	"scrolllock":  "scroll_lock",
	"printscreen": "print_screen",
	"print":       "print_screen",
	"ins":         "insert",
}

func PrintableKey(r rune) Key { return Key{Kind: Printable, Char: r} }

func NamedKey(name string) Key { return Key{Kind: Named, Name: name} }

func RawKey(code int) Key { return Key{Kind: RawCode, Code: code} }

// String returns the canonical identifier. Space is always reported by name so
// that a captured space and a configured "space" compare equal.
func (k Key) String() string {
	switch k.Kind {
	case Printable:
		if k.Char == ' ' {
			return Space
		}
		return string(unicode.ToLower(k.Char))
	case Named:
		name := strings.ToLower(strings.TrimSpace(k.Name))
		if canonical, ok := aliases[name]; ok {
			return canonical
		}
		return name
	case RawCode:
		return rawPrefix + strconv.Itoa(k.Code)
	}
	return ""
}

// Parse reads an identifier as written in configuration or produced by
// String. Anything that is not a single character or a vk_<code> is treated
// as a name.
func Parse(s string) (Key, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		if s != "" && strings.ContainsRune(s, ' ') {
			return PrintableKey(' '), nil
		}
		return Key{}, fmt.Errorf("empty key identifier")
	}

	if utf8.RuneCountInString(trimmed) == 1 {
		r, _ := utf8.DecodeRuneInString(trimmed)
		return PrintableKey(r), nil
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, rawPrefix) {
		code, err := strconv.Atoi(strings.TrimPrefix(lower, rawPrefix))
		if err != nil || code < 0 {
			return Key{}, fmt.Errorf("invalid raw key code %q", s)
		}
		return RawKey(code), nil
	}

	return NamedKey(lower), nil
}

// Canonical normalizes an identifier. Empty input yields an empty string.
func Canonical(s string) string {
	k, err := Parse(s)
	if err != nil {
		return ""
	}
	return k.String()
}

// Equal reports whether two identifiers name the same key.
func Equal(a, b string) bool {
	ca := Canonical(a)
	return ca != "" && ca == Canonical(b)
}
