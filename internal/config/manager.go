package config

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/codespeak-dev/codespeak/internal/logging"
)

// Manager holds the current configuration and reloads it when the file
// changes. Invalid edits are logged and ignored.
type Manager struct {
	path   string
	logger *log.Logger

	mu        sync.RWMutex
	config    *Config
	overrides Overrides
	onReload  func(*Config)

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewManager loads path, using the defaults when the file does not exist yet.
func NewManager(path string) (*Manager, error) {
	logger := logging.For("config")

	cfg, found, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Info("no config file, using defaults", "path", path)
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("configuration is not valid", "err", err)
	}

	return &Manager{path: path, logger: logger, config: cfg}, nil
}

func (m *Manager) Path() string { return m.path }

// SetOverrides layers command-line values over the current config and over
// every reloaded one.
func (m *Manager) SetOverrides(o Overrides) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.config.ApplyOverrides(o); err != nil {
		return err
	}
	m.overrides = o
	return nil
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Clone()
}

// OnReload registers fn to run with each configuration that replaced the
// previous one. Only the last registration is kept.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	m.onReload = fn
	m.mu.Unlock()
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors and Save replace the file by rename.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	m.logger.Info("watching for changes", "path", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	name := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				m.logger.Debug("config file changed", "op", event.Op.String())
				m.reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("watcher error", "err", err)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reload() {
	cfg, err := LoadFile(m.path)
	if err != nil {
		m.logger.Warn("failed to reload config", "err", err)
		return
	}
	m.mu.RLock()
	overrides := m.overrides
	m.mu.RUnlock()
	if err := cfg.ApplyOverrides(overrides); err != nil {
		m.logger.Warn("failed to apply overrides on reload", "err", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		m.logger.Warn("invalid config after reload, keeping the previous one", "err", err)
		return
	}

	m.mu.Lock()
	if reflect.DeepEqual(m.config, cfg) {
		m.mu.Unlock()
		return
	}
	m.config = cfg
	fn := m.onReload
	m.mu.Unlock()

	m.logger.Info("configuration reloaded")
	if fn != nil {
		fn(cfg.Clone())
	}
}
