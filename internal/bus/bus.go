// Package bus is the local control channel between the CLI and a running
// daemon: a unix socket that speaks one line per request and a PID file.
package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	SockName = "control.sock"
	PidName  = "codespeak.pid"
	ProtoVer = "0.2"
)

// DirEnv overrides the directory holding the socket and PID file.
const DirEnv = "CODESPEAK_RUNTIME_DIR"

// Request commands. Press carries the key as its argument.
const (
	CmdToggle  = 't'
	CmdCancel  = 'c'
	CmdStatus  = 's'
	CmdVersion = 'v'
	CmdQuit    = 'q'
	CmdPress   = 'k'
)

// ErrNotRunning means no daemon is listening on the socket.
var ErrNotRunning = errors.New("daemon not running")

const requestTimeout = 30 * time.Second

// Dir is $CODESPEAK_RUNTIME_DIR, else $XDG_RUNTIME_DIR/codespeak, else the
// user cache directory.
func Dir() (string, error) {
	if d := os.Getenv(DirEnv); d != "" {
		return d, nil
	}
	if d := os.Getenv("XDG_RUNTIME_DIR"); d != "" {
		return filepath.Join(d, "codespeak"), nil
	}
	d, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "codespeak"), nil
}

func SockPath() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, SockName), nil
}

func PidPath() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, PidName), nil
}

// Request is one parsed control line.
type Request struct {
	Cmd byte
	Arg string
}

func (r Request) String() string {
	return string(r.Cmd) + r.Arg
}

func ParseRequest(line string) (Request, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Request{}, errors.New("empty request")
	}
	req := Request{Cmd: line[0], Arg: line[1:]}
	switch req.Cmd {
	case CmdToggle, CmdCancel, CmdStatus, CmdVersion, CmdQuit:
		if req.Arg != "" {
			return Request{}, fmt.Errorf("command %q takes no argument", req.Cmd)
		}
	case CmdPress:
		if strings.TrimSpace(req.Arg) == "" {
			return Request{}, errors.New("press needs a key")
		}
	default:
		return Request{}, fmt.Errorf("unknown command %q", req.Cmd)
	}
	return req, nil
}

// Socket is the control socket at a fixed path.
type Socket struct {
	Path string
}

func DefaultSocket() (*Socket, error) {
	p, err := SockPath()
	if err != nil {
		return nil, err
	}
	return &Socket{Path: p}, nil
}

func (s *Socket) Listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.Path) // stale socket from last run
	return net.Listen("unix", s.Path)
}

// Send writes one request and returns the daemon's reply line without the
// trailing newline.
func (s *Socket) Send(req Request) (string, error) {
	c, err := net.DialTimeout("unix", s.Path, 2*time.Second)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) {
			return "", ErrNotRunning
		}
		return "", err
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(requestTimeout))

	if _, err := c.Write([]byte(req.String() + "\n")); err != nil {
		return "", err
	}
	resp, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimRight(resp, "\n"), nil
}

// SendCommand sends a request to the daemon at the default socket.
func SendCommand(cmd byte, arg string) (string, error) {
	s, err := DefaultSocket()
	if err != nil {
		return "", err
	}
	return s.Send(Request{Cmd: cmd, Arg: arg})
}

// Reply formats. Errors start with ERR so clients can tell them apart.
func OK(msg string) string  { return "OK " + msg }
func Err(msg string) string { return "ERR " + msg }

// ReplyError turns an ERR reply into an error.
func ReplyError(resp string) error {
	if msg, ok := strings.CutPrefix(resp, "ERR "); ok {
		return errors.New(msg)
	}
	return nil
}

// PidFile guards against two daemons sharing one socket.
type PidFile struct {
	Path string
}

func DefaultPidFile() (*PidFile, error) {
	p, err := PidPath()
	if err != nil {
		return nil, err
	}
	return &PidFile{Path: p}, nil
}

// CheckExisting fails when the recorded process is still alive. Missing or
// stale files are fine.
func (p *PidFile) CheckExisting() error {
	pid, err := p.Read()
	if err != nil || pid == 0 {
		return nil
	}
	if pid != os.Getpid() && isProcessAlive(pid) {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}
	return nil
}

// Read returns the recorded PID, or 0 when there is no usable file.
func (p *PidFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

func (p *PidFile) Create() error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.Path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *PidFile) Remove() error {
	err := os.Remove(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
