// Package daemon runs a dictation session in the background and serves the
// control socket that the CLI and compositor keybinds talk to.
package daemon

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codespeak-dev/codespeak/internal/bus"
	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

type Daemon struct {
	manager *config.Manager
	build   Builder
	socket  *bus.Socket
	pid     *bus.PidFile
	version string
	logger  *log.Logger

	mu     sync.Mutex
	sess   *Session
	good   *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup
}

type Option func(*Daemon)

func WithBuilder(b Builder) Option { return func(d *Daemon) { d.build = b } }

func WithSocket(s *bus.Socket) Option { return func(d *Daemon) { d.socket = s } }

func WithPidFile(p *bus.PidFile) Option { return func(d *Daemon) { d.pid = p } }

func WithVersion(v string) Option { return func(d *Daemon) { d.version = v } }

func New(manager *config.Manager, opts ...Option) (*Daemon, error) {
	d := &Daemon{
		manager: manager,
		build:   DefaultBuilder(BuildOptions{}),
		version: "dev",
		logger:  logging.For("daemon"),
	}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	if d.socket == nil {
		if d.socket, err = bus.DefaultSocket(); err != nil {
			return nil, err
		}
	}
	if d.pid == nil {
		if d.pid, err = bus.DefaultPidFile(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Run serves until ctx is cancelled, a quit command arrives or the process
// is signalled. The session is stopped on every exit path.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.pid.CheckExisting(); err != nil {
		return err
	}

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.mu.Lock()
	d.ctx, d.cancel = ctx, cancel
	d.mu.Unlock()

	if err := d.startSession(d.manager.GetConfig()); err != nil {
		return err
	}
	defer d.stopSession()

	ln, err := d.socket.Listen()
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.socket.Path, err)
	}
	defer ln.Close()

	if err := d.pid.Create(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer d.pid.Remove()

	d.manager.OnReload(d.restart)
	if err := d.manager.StartWatching(ctx); err != nil {
		d.logger.Warn("config hot reload disabled", "err", err)
	}
	defer d.manager.Stop()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	d.logger.Info("daemon started", "socket", d.socket.Path, "version", d.version)

	defer d.conns.Wait()
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("shutting down")
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		d.conns.Add(1)
		go func() {
			defer d.conns.Done()
			d.handle(c)
		}()
	}
}

func (d *Daemon) startSession(cfg *config.Config) error {
	s, err := d.build(cfg)
	if err != nil {
		return err
	}
	if err := s.Start(d.ctx, d.onText); err != nil {
		s.Stop()
		return err
	}
	d.mu.Lock()
	d.sess = s
	d.good = cfg
	d.mu.Unlock()
	return nil
}

func (d *Daemon) stopSession() {
	d.mu.Lock()
	s := d.sess
	d.sess = nil
	d.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// restart swaps in a session built from a reloaded config. When the new
// session cannot be built the old one keeps running.
func (d *Daemon) restart(cfg *config.Config) {
	logging.SetLevel(cfg.Logging.Level)
	next, err := d.build(cfg)
	if err != nil {
		d.logger.Error("config reload: cannot build session, keeping the current one", "err", err)
		return
	}

	d.mu.Lock()
	good := d.good
	d.mu.Unlock()

	d.stopSession()
	if err := next.Start(d.ctx, d.onText); err != nil {
		next.Stop()
		d.logger.Error("config reload: session failed to start", "err", err)
		if good == nil {
			return
		}
		if err := d.startSession(good); err != nil {
			d.logger.Error("config reload: cannot restore the previous session", "err", err)
			return
		}
		d.logger.Warn("restored the previous configuration")
		return
	}
	d.mu.Lock()
	d.sess = next
	d.good = cfg
	d.mu.Unlock()
	d.logger.Info("session restarted with new configuration")
}

func (d *Daemon) onText(text string) {
	d.logger.Debug("utterance typed", "chars", len([]rune(text)))
}

func (d *Daemon) session() *Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(time.Minute))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		d.logger.Debug("client read error", "err", err)
		fmt.Fprintln(c, bus.Err("read_error: "+err.Error()))
		return
	}
	req, err := bus.ParseRequest(line)
	if err != nil {
		fmt.Fprintln(c, bus.Err(err.Error()))
		return
	}
	fmt.Fprintln(c, d.dispatch(req))
}

func (d *Daemon) dispatch(req bus.Request) string {
	switch req.Cmd {
	case bus.CmdVersion:
		return fmt.Sprintf("STATUS proto=%s version=%s", bus.ProtoVer, d.version)
	case bus.CmdQuit:
		d.cancel()
		return bus.OK("quitting")
	}

	s := d.session()
	if s == nil {
		return bus.Err("no active session")
	}
	ctx := d.ctx

	switch req.Cmd {
	case bus.CmdToggle:
		if err := s.Toggle(ctx); err != nil {
			return bus.Err(err.Error())
		}
		return bus.OK("toggled " + s.State().String())
	case bus.CmdCancel:
		if err := s.Cancel(ctx); err != nil {
			return bus.Err(err.Error())
		}
		return bus.OK("cancelled")
	case bus.CmdPress:
		handled, err := s.Press(req.Arg)
		if err != nil {
			return bus.Err(err.Error())
		}
		if !handled {
			return bus.Err("key not bound: " + req.Arg)
		}
		return bus.OK("pressed " + req.Arg)
	case bus.CmdStatus:
		st := s.Status()
		reply := fmt.Sprintf("STATUS state=%s undo=%d", st.State, st.UndoDepth)
		if st.RecordingID != "" {
			reply += fmt.Sprintf(" id=%s for=%s", st.RecordingID, st.Recording.Round(100*time.Millisecond))
		}
		return reply
	default:
		return bus.Err("unsupported command")
	}
}
