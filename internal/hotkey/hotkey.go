package hotkey

import "fmt"

const (
	SourceEvdev  = "evdev"
	SourceSocket = "socket"
)

// New creates the hook for a configured source. The socket source is a
// Remote hook the daemon feeds from control commands.
func New(source string, devices []string) (Hook, error) {
	switch source {
	case SourceEvdev, "":
		return NewEvdev(devices), nil
	case SourceSocket:
		return NewRemote(), nil
	default:
		return nil, fmt.Errorf("unsupported hotkey source: %s", source)
	}
}
