//go:build linux

package hotkey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

// Evdev listens on /dev/input keyboards. The user needs read access to the
// devices, usually through the input group.
type Evdev struct {
	devices []string
	logger  *log.Logger

	mu      sync.Mutex
	files   []*os.File
	queue   *Queue
	readers sync.WaitGroup
}

func NewEvdev(devices []string) *Evdev {
	return &Evdev{devices: devices, logger: logging.For("hotkey")}
}

func (e *Evdev) Register(bindings map[string]func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue != nil {
		return errors.New("hotkey: already registered")
	}

	files, err := openDevices(e.devices)
	if err != nil {
		return err
	}

	e.files = files
	e.queue = NewQueue(bindings)
	for _, f := range files {
		e.readers.Add(1)
		go e.read(f, e.queue)
	}
	e.logger.Info("listening for hotkeys", "devices", len(files))
	return nil
}

func (e *Evdev) read(f *os.File, q *Queue) {
	defer e.readers.Done()
	err := readPresses(f, func(k keys.Key) bool {
		id := k.String()
		if q.Press(id) {
			e.logger.Debug("hotkey", "key", id)
		}
		return true
	})
	if err != nil && !errors.Is(err, os.ErrClosed) {
		e.logger.Warn("input device closed", "device", f.Name(), "err", err)
	}
}

func (e *Evdev) Stop() error {
	e.mu.Lock()
	files, q := e.files, e.queue
	e.files, e.queue = nil, nil
	e.mu.Unlock()

	var errs []error
	for _, f := range files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.readers.Wait()
	if q != nil {
		q.Close()
	}
	return errors.Join(errs...)
}

// readPresses decodes events from r and calls fn for every key-down until fn
// returns false or r fails.
func readPresses(r io.Reader, fn func(keys.Key) bool) error {
	buf := make([]byte, eventSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		ev, err := decodeEvent(buf)
		if err != nil {
			return err
		}
		if !ev.isPress() {
			continue
		}
		if !fn(keys.FromEvdev(ev.Code)) {
			return nil
		}
	}
}

// FindKeyboards lists keyboard event devices, preferring stable by-id links.
func FindKeyboards() ([]string, error) {
	matches, err := filepath.Glob("/dev/input/by-id/*-event-kbd")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		matches, err = filepath.Glob("/dev/input/event*")
		if err != nil {
			return nil, err
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no input devices found under /dev/input")
	}
	sort.Strings(matches)
	return matches, nil
}

func openDevices(paths []string) ([]*os.File, error) {
	if len(paths) == 0 {
		found, err := FindKeyboards()
		if err != nil {
			return nil, err
		}
		paths = found
	}

	var files []*os.File
	var errs []error
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("open input devices (is the user in the input group?): %w", errors.Join(errs...))
	}
	return files, nil
}

// Capture waits for the next key press on any keyboard and returns its
// canonical identifier.
func Capture(ctx context.Context, devices []string) (string, error) {
	files, err := openDevices(devices)
	if err != nil {
		return "", err
	}

	result := make(chan string, 1)
	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func(f *os.File) {
			defer wg.Done()
			readPresses(f, func(k keys.Key) bool {
				select {
				case result <- k.String():
				default:
				}
				return false
			})
		}(f)
	}

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
		wg.Wait()
	}

	select {
	case id := <-result:
		closeAll()
		return id, nil
	case <-ctx.Done():
		closeAll()
		return "", ctx.Err()
	}
}
