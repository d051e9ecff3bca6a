package hotkey

import (
	"errors"
	"sync"
)

var ErrNotRegistered = errors.New("hotkey: no bindings registered")

// Remote is a Hook fed by explicit Press calls, such as key names arriving
// over the control socket from a compositor keybind.
type Remote struct {
	mu    sync.Mutex
	queue *Queue
}

func NewRemote() *Remote {
	return &Remote{}
}

func (r *Remote) Register(bindings map[string]func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queue != nil {
		return errors.New("hotkey: already registered")
	}
	r.queue = NewQueue(bindings)
	return nil
}

// Press delivers key as if it had been pressed on a keyboard.
func (r *Remote) Press(key string) (bool, error) {
	r.mu.Lock()
	q := r.queue
	r.mu.Unlock()
	if q == nil {
		return false, ErrNotRegistered
	}
	return q.Press(key), nil
}

func (r *Remote) Stop() error {
	r.mu.Lock()
	q := r.queue
	r.queue = nil
	r.mu.Unlock()
	if q != nil {
		q.Close()
	}
	return nil
}
