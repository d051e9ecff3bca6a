package daemon

import (
	"fmt"

	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/injection"
	"github.com/codespeak-dev/codespeak/internal/notify"
	"github.com/codespeak-dev/codespeak/internal/recognizer"
	"github.com/codespeak-dev/codespeak/internal/session"
)

// Session is a controller together with the hook feeding it.
type Session struct {
	*session.Controller
	Hook hotkey.Hook
}

// Press forwards a key to a socket-driven hook.
func (s *Session) Press(key string) (bool, error) {
	remote, ok := s.Hook.(*hotkey.Remote)
	if !ok {
		return false, fmt.Errorf("press needs hotkey.source = %q", hotkey.SourceSocket)
	}
	return remote.Press(key)
}

// BuildOptions adjust how Build wires a session.
type BuildOptions struct {
	// Backend forces one injection backend instead of selecting from the
	// configured list.
	Backend string
}

// Builder creates the session for a configuration snapshot.
type Builder func(cfg *config.Config) (*Session, error)

// Build wires a session from cfg: hotkey source, keyboard backend,
// notifier and recognizer. Recognizer failures are *recognizer.InitError.
func Build(cfg *config.Config, opts BuildOptions) (*Session, error) {
	hook, err := hotkey.New(cfg.Hotkey.Source, cfg.Hotkey.Devices)
	if err != nil {
		return nil, err
	}

	var kb injection.Keyboard
	if opts.Backend != "" {
		kb, err = injection.New(opts.Backend, cfg.Injection.Timeout)
	} else {
		kb, err = injection.Select(cfg.ToInjectionConfig())
	}
	if err != nil {
		return nil, err
	}

	n, err := notify.New(cfg.NotifierType())
	if err != nil {
		return nil, err
	}

	rec, err := recognizer.New(cfg.ToRecognizerConfig())
	if err != nil {
		return nil, err
	}

	c := session.New(cfg.ToSettings(), session.Deps{
		Recognizer: rec,
		Hook:       hook,
		Keyboard:   kb,
		Notifier:   n,
	})
	return &Session{Controller: c, Hook: hook}, nil
}

// DefaultBuilder is Build with the given options.
func DefaultBuilder(opts BuildOptions) Builder {
	return func(cfg *config.Config) (*Session, error) {
		return Build(cfg, opts)
	}
}
