package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codespeak-dev/codespeak/internal/bus"
	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/recognizer"
	"github.com/codespeak-dev/codespeak/internal/session"
	"github.com/codespeak-dev/codespeak/internal/testutil"
)

const testConfig = `
[dictation]
  settle_delay = "0s"
  key_interval = "0s"
  recording_indicator = ""

[hotkey]
  source = "socket"

[transcription]
  api_key = "test"
`

type fixture struct {
	d      *Daemon
	socket *bus.Socket
	pid    *bus.PidFile
	kb     *testutil.FakeKeyboard

	mu   sync.Mutex
	recs []*testutil.FakeRecognizer
	fail error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := config.NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		socket: &bus.Socket{Path: filepath.Join(dir, bus.SockName)},
		pid:    &bus.PidFile{Path: filepath.Join(dir, bus.PidName)},
		kb:     &testutil.FakeKeyboard{},
	}
	f.d, err = New(m, WithBuilder(f.build), WithSocket(f.socket), WithPidFile(f.pid), WithVersion("1.2.3"))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) build(cfg *config.Config) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	rec := &testutil.FakeRecognizer{}
	f.recs = append(f.recs, rec)
	hook := hotkey.NewRemote()
	c := session.New(cfg.ToSettings(), session.Deps{
		Recognizer: rec,
		Hook:       hook,
		Keyboard:   f.kb,
		Notifier:   &testutil.FakeNotifier{},
	})
	return &Session{Controller: c, Hook: hook}, nil
}

func (f *fixture) rec(i int) *testutil.FakeRecognizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recs[i]
}

// start runs the daemon and waits until it answers.
func (f *fixture) start(t *testing.T) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- f.d.Run(context.Background()) }()

	ok := testutil.Eventually(3*time.Second, func() bool {
		_, err := f.socket.Send(bus.Request{Cmd: bus.CmdVersion})
		return err == nil
	})
	if !ok {
		t.Fatal("daemon did not start")
	}
	t.Cleanup(func() {
		f.socket.Send(bus.Request{Cmd: bus.CmdQuit})
		select {
		case <-errCh:
		case <-time.After(3 * time.Second):
		}
	})
	return errCh
}

func (f *fixture) send(t *testing.T, cmd byte, arg string) string {
	t.Helper()
	resp, err := f.socket.Send(bus.Request{Cmd: cmd, Arg: arg})
	if err != nil {
		t.Fatalf("Send(%c%s) error = %v", cmd, arg, err)
	}
	return resp
}

func TestDaemonCommands(t *testing.T) {
	f := newFixture(t)
	errCh := f.start(t)

	if got := f.send(t, bus.CmdVersion, ""); got != "STATUS proto="+bus.ProtoVer+" version=1.2.3" {
		t.Errorf("version = %q", got)
	}
	if got := f.send(t, bus.CmdStatus, ""); got != "STATUS state=ready undo=0" {
		t.Errorf("status = %q", got)
	}

	f.rec(0).Queue("hello")
	if got := f.send(t, bus.CmdToggle, ""); got != "OK toggled recording" {
		t.Errorf("toggle = %q", got)
	}
	if got := f.send(t, bus.CmdStatus, ""); !strings.HasPrefix(got, "STATUS state=recording undo=0 id=") {
		t.Errorf("status while recording = %q", got)
	}
	if got := f.send(t, bus.CmdToggle, ""); got != "OK toggled ready" {
		t.Errorf("toggle = %q", got)
	}
	if typed := f.kb.Typed(); len(typed) != 1 || typed[0] != "hello " {
		t.Errorf("typed = %q", typed)
	}
	if got := f.send(t, bus.CmdStatus, ""); got != "STATUS state=ready undo=1" {
		t.Errorf("status = %q", got)
	}

	// keys pressed through the socket drive the same controller
	if got := f.send(t, bus.CmdPress, "F9"); got != "OK pressed F9" {
		t.Errorf("press = %q", got)
	}
	if !testutil.Eventually(time.Second, func() bool { return f.rec(0).Recording() }) {
		t.Fatal("press f9 did not start recording")
	}
	f.send(t, bus.CmdPress, "esc")
	if !testutil.Eventually(time.Second, func() bool { return f.d.session().State() == session.ActiveIdle }) {
		t.Fatal("press esc did not cancel")
	}

	if got := f.send(t, bus.CmdPress, "f5"); bus.ReplyError(got) == nil {
		t.Errorf("unbound key reply = %q", got)
	}
	if got := f.send(t, bus.CmdCancel, ""); got != "OK cancelled" {
		t.Errorf("cancel when idle = %q", got)
	}

	if got := f.send(t, bus.CmdQuit, ""); got != "OK quitting" {
		t.Errorf("quit = %q", got)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not exit")
	}

	if f.rec(0).Shutdowns() != 1 {
		t.Errorf("recognizer shutdowns = %d, want 1", f.rec(0).Shutdowns())
	}
	if _, err := os.Stat(f.pid.Path); !os.IsNotExist(err) {
		t.Error("PID file should be removed on exit")
	}
}

func TestDaemonRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	if got := f.send(t, 'x', ""); bus.ReplyError(got) == nil {
		t.Errorf("unknown command reply = %q", got)
	}
}

func TestDaemonSecondInstance(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.pid.Path, []byte(strconv.Itoa(os.Getppid())), 0o600); err != nil {
		t.Fatal(err)
	}
	err := f.d.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Errorf("Run() error = %v", err)
	}
}

func TestDaemonInitErrorIsFatal(t *testing.T) {
	f := newFixture(t)
	f.fail = &recognizer.InitError{Err: errors.New("pw-record not found")}

	err := f.d.Run(context.Background())
	if !recognizer.IsInitError(err) {
		t.Errorf("Run() error = %v, want InitError", err)
	}
	if _, err := os.Stat(f.socket.Path); !os.IsNotExist(err) {
		t.Error("socket should not be created when the session cannot be built")
	}
}

func TestDaemonStopsOnContextCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.d.Run(ctx) }()

	if !testutil.Eventually(3*time.Second, func() bool {
		_, err := f.socket.Send(bus.Request{Cmd: bus.CmdStatus})
		return err == nil
	}) {
		t.Fatal("daemon did not start")
	}
	f.send(t, bus.CmdToggle, "")

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not exit")
	}
	// the recording in progress was discarded by the deferred Stop
	if f.rec(0).Recording() {
		t.Error("recognizer still recording after shutdown")
	}
	if f.rec(0).Shutdowns() != 1 {
		t.Errorf("shutdowns = %d", f.rec(0).Shutdowns())
	}
}

func TestDaemonRestart(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	cfg := f.d.manager.GetConfig()
	cfg.Dictation.PushToTalkKey = "f8"
	f.d.restart(cfg)

	if f.rec(0).Shutdowns() != 1 {
		t.Errorf("old session not stopped: shutdowns = %d", f.rec(0).Shutdowns())
	}
	if got := f.send(t, bus.CmdPress, "f9"); bus.ReplyError(got) == nil {
		t.Errorf("old key still bound: %q", got)
	}
	f.send(t, bus.CmdPress, "f8")
	if !testutil.Eventually(time.Second, func() bool { return f.rec(1).Recording() }) {
		t.Fatal("new key did not start recording")
	}

	// a session that cannot be built leaves the current one running
	f.mu.Lock()
	f.fail = errors.New("no backend")
	f.mu.Unlock()
	f.d.restart(cfg)
	if f.rec(1).Shutdowns() != 0 {
		t.Error("current session stopped although the replacement failed")
	}
	if got := f.send(t, bus.CmdStatus, ""); !strings.HasPrefix(got, "STATUS state=recording") {
		t.Errorf("status = %q", got)
	}
}

func TestDaemonRestartFallsBackWhenStartFails(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	cfg := f.d.manager.GetConfig()
	cfg.Dictation.PushToTalkKey = cfg.Dictation.EscapeKey
	f.d.restart(cfg)

	if f.d.session() == nil {
		t.Fatal("no session after a failed reload")
	}
	if got := f.send(t, bus.CmdStatus, ""); got != "STATUS state=ready undo=0" {
		t.Errorf("status = %q", got)
	}
	f.send(t, bus.CmdPress, "f9")
	if !testutil.Eventually(time.Second, func() bool { return f.rec(2).Recording() }) {
		t.Fatal("restored session does not answer the previous key")
	}

	// the failed configuration is not remembered as the one to restore
	cfg = f.d.manager.GetConfig()
	cfg.Dictation.PushToTalkKey = "f8"
	f.d.restart(cfg)
	f.send(t, bus.CmdPress, "f8")
	if !testutil.Eventually(time.Second, func() bool { return f.rec(3).Recording() }) {
		t.Fatal("later reload did not take effect")
	}
}

func TestSessionPressNeedsSocketSource(t *testing.T) {
	s := &Session{Hook: hotkey.NewEvdev(nil)}
	if _, err := s.Press("f9"); err == nil {
		t.Error("Press() should fail for an evdev hook")
	}
}
