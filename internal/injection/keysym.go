package injection

import (
	"fmt"
	"strings"

	"github.com/codespeak-dev/codespeak/internal/keys"
)

// xkbNames maps canonical names onto X keysym names used by wtype and xdotool.
var xkbNames = map[string]string{
	"backspace":    "BackSpace",
	"enter":        "Return",
	"tab":          "Tab",
	"esc":          "Escape",
	"space":        "space",
	"delete":       "Delete",
	"insert":       "Insert",
	"home":         "Home",
	"end":          "End",
	"page_up":      "Prior",
	"page_down":    "Next",
	"up":           "Up",
	"down":         "Down",
	"left":         "Left",
	"right":        "Right",
	"shift_l":      "Shift_L",
	"shift_r":      "Shift_R",
	"ctrl_l":       "Control_L",
	"ctrl_r":       "Control_R",
	"alt_l":        "Alt_L",
	"alt_r":        "Alt_R",
	"alt_gr":       "ISO_Level3_Shift",
	"caps_lock":    "Caps_Lock",
	"num_lock":     "Num_Lock",
	"scroll_lock":  "Scroll_Lock",
	"pause":        "Pause",
	"print_screen": "Print",
	"menu":         "Menu",
	"cmd":          "Super_L",
	"cmd_l":        "Super_L",
	"cmd_r":        "Super_R",
}

// keysym converts a canonical key identifier to an X keysym name.
func keysym(id string) (string, error) {
	k, err := keys.Parse(id)
	if err != nil {
		return "", err
	}
	switch k.Kind {
	case keys.Printable:
		if k.Char == ' ' {
			return "space", nil
		}
		return string(k.Char), nil
	case keys.Named:
		name := k.String()
		if sym, ok := xkbNames[name]; ok {
			return sym, nil
		}
		if len(name) > 1 && name[0] == 'f' && strings.Trim(name[1:], "0123456789") == "" {
			return "F" + name[1:], nil
		}
		return "", fmt.Errorf("no keysym for %q", id)
	default:
		return "", fmt.Errorf("no keysym for raw key %q", id)
	}
}
