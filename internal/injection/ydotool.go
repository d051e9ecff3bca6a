package injection

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/codespeak-dev/codespeak/internal/keys"
)

// ydotool talks to the uinput daemon, so it works on any compositor and on X11.
type ydotoolBackend struct {
	timeout time.Duration
}

func NewYdotool(timeout time.Duration) Keyboard {
	return &ydotoolBackend{timeout: timeout}
}

func (y *ydotoolBackend) Name() string {
	return "ydotool"
}

func (y *ydotoolBackend) Available() error {
	if err := checkBinary("ydotool", "ydotool"); err != nil {
		return err
	}

	// Only check socket if ydotoold exists
	if _, err := exec.LookPath("ydotoold"); err == nil {
		socketPath := y.socketPath()
		if socketPath == "" {
			return fmt.Errorf("ydotoold socket not found - ensure ydotoold is running")
		}

		// ydotoold v1.0.4+ uses SOCK_DGRAM sockets; older versions use stream.
		conn, err := net.Dial("unixgram", socketPath)
		if err != nil {
			conn, err = net.DialTimeout("unix", socketPath, 500*time.Millisecond)
		}
		if err != nil {
			return fmt.Errorf("ydotoold not responding at %s: %w", socketPath, err)
		}
		conn.Close()
	}

	return nil
}

func (y *ydotoolBackend) socketPath() string {
	if sock := os.Getenv("YDOTOOL_SOCKET"); sock != "" {
		if _, err := os.Stat(sock); err == nil {
			return sock
		}
	}

	paths := []string{
		"/run/user/" + strconv.Itoa(os.Getuid()) + "/.ydotool_socket",
		"/tmp/.ydotool_socket",
	}
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		paths = append([]string{filepath.Join(xdg, ".ydotool_socket")}, paths...)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (y *ydotoolBackend) TypeText(ctx context.Context, text string, interval time.Duration) error {
	timeout := commandTimeout(y.timeout, utf8.RuneCountInString(text), interval)
	return runCommand(ctx, timeout, "ydotool", "type", "--key-delay", delayMillis(interval), "--", text)
}

func (y *ydotoolBackend) PressKey(ctx context.Context, key string, interval time.Duration) error {
	return y.PressKeys(ctx, []string{key}, interval)
}

// PressKeys sends every key as a down/up pair in a single ydotool invocation.
func (y *ydotoolBackend) PressKeys(ctx context.Context, names []string, interval time.Duration) error {
	if len(names) == 0 {
		return nil
	}
	args := []string{"key", "--key-delay", delayMillis(interval)}
	for _, name := range names {
		code, ok := keys.EvdevCode(name)
		if !ok {
			return fmt.Errorf("ydotool: no key code for %q", name)
		}
		c := strconv.Itoa(int(code))
		args = append(args, c+":1", c+":0")
	}
	return runCommand(ctx, commandTimeout(y.timeout, len(names), interval), "ydotool", args...)
}
