// Package hotkey maps global key presses onto session actions and delivers
// them one at a time.
package hotkey

import (
	"fmt"
	"sort"

	"github.com/codespeak-dev/codespeak/internal/keys"
)

type Action int

const (
	ToggleRecording Action = iota
	CancelRecording
)

func (a Action) String() string {
	switch a {
	case ToggleRecording:
		return "toggle"
	case CancelRecording:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Table maps canonical key identifiers to actions
type Table struct {
	bindings map[string]Action
}

// BuildTable binds the push-to-talk key to toggling and the escape key to
// cancelling. The two keys must differ.
func BuildTable(pushToTalk, escape string) (Table, error) {
	ptt := keys.Canonical(pushToTalk)
	if ptt == "" {
		return Table{}, fmt.Errorf("push-to-talk key is empty")
	}

	t := Table{bindings: map[string]Action{ptt: ToggleRecording}}

	if esc := keys.Canonical(escape); esc != "" {
		if esc == ptt {
			return Table{}, fmt.Errorf("escape key %q must differ from push-to-talk key", escape)
		}
		t.bindings[esc] = CancelRecording
	}
	return t, nil
}

// Keys returns the bound identifiers in sorted order.
func (t Table) Keys() []string {
	out := make([]string, 0, len(t.bindings))
	for k := range t.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Bind resolves each bound key to the handler for its action. Actions without
// a handler are left out.
func (t Table) Bind(handlers map[Action]func()) map[string]func() {
	out := make(map[string]func(), len(t.bindings))
	for k, a := range t.bindings {
		if fn, ok := handlers[a]; ok && fn != nil {
			out[k] = fn
		}
	}
	return out
}
