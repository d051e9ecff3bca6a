// Package testutil holds fakes for the external collaborators of a dictation
// session: keyboard, recognizer and notifier. It deliberately imports nothing
// from this module so any package's tests can use it.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"
)

// KeyEvent is one request a FakeKeyboard received
type KeyEvent struct {
	Kind     string // "type", "press" or "batch"
	Text     string
	Keys     []string
	Interval time.Duration
}

// FakeKeyboard records keystroke requests instead of sending them
type FakeKeyboard struct {
	mu     sync.Mutex
	events []KeyEvent

	// TypeFunc, when set, decides the error returned for each TypeText call.
	TypeFunc func(text string) error
	PressErr error
}

func (k *FakeKeyboard) Name() string     { return "fake" }
func (k *FakeKeyboard) Available() error { return nil }

func (k *FakeKeyboard) TypeText(ctx context.Context, text string, interval time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.TypeFunc != nil {
		if err := k.TypeFunc(text); err != nil {
			return err
		}
	}
	k.events = append(k.events, KeyEvent{Kind: "type", Text: text, Interval: interval})
	return nil
}

func (k *FakeKeyboard) PressKey(ctx context.Context, key string, interval time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.PressErr != nil {
		return k.PressErr
	}
	k.events = append(k.events, KeyEvent{Kind: "press", Keys: []string{key}, Interval: interval})
	return nil
}

func (k *FakeKeyboard) PressKeys(ctx context.Context, keys []string, interval time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.PressErr != nil {
		return k.PressErr
	}
	cp := make([]string, len(keys))
	copy(cp, keys)
	k.events = append(k.events, KeyEvent{Kind: "batch", Keys: cp, Interval: interval})
	return nil
}

// Events returns a copy of every request received so far
func (k *FakeKeyboard) Events() []KeyEvent {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]KeyEvent, len(k.events))
	copy(out, k.events)
	return out
}

// Typed returns the text of every TypeText call in order
func (k *FakeKeyboard) Typed() []string {
	var out []string
	for _, e := range k.Events() {
		if e.Kind == "type" {
			out = append(out, e.Text)
		}
	}
	return out
}

// KeyCount counts how many times key was pressed across all requests
func (k *FakeKeyboard) KeyCount(key string) int {
	n := 0
	for _, e := range k.Events() {
		for _, pressed := range e.Keys {
			if pressed == key {
				n++
			}
		}
	}
	return n
}

// Requests counts press and batch requests
func (k *FakeKeyboard) Requests() int {
	n := 0
	for _, e := range k.Events() {
		if e.Kind != "type" {
			n++
		}
	}
	return n
}

func (k *FakeKeyboard) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.events = nil
}

// ErrAlreadyShutdown is returned by FakeRecognizer on a repeated Shutdown
var ErrAlreadyShutdown = errors.New("recognizer already shut down")

// FakeRecognizer replays queued transcripts
type FakeRecognizer struct {
	mu sync.Mutex

	Transcripts []string
	StartErr    error
	StopErr     error
	TextErr     error

	starts    int
	stops     int
	textCalls int
	shutdowns int
	recording bool
}

func (r *FakeRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	if r.StartErr != nil {
		return r.StartErr
	}
	r.recording = true
	return nil
}

func (r *FakeRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	r.recording = false
	return r.StopErr
}

func (r *FakeRecognizer) Text(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textCalls++
	if r.TextErr != nil {
		return "", r.TextErr
	}
	if len(r.Transcripts) == 0 {
		return "", nil
	}
	text := r.Transcripts[0]
	r.Transcripts = r.Transcripts[1:]
	return text, nil
}

func (r *FakeRecognizer) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdowns++
	if r.shutdowns > 1 {
		return ErrAlreadyShutdown
	}
	r.recording = false
	return nil
}

// Queue appends transcripts for subsequent Text calls
func (r *FakeRecognizer) Queue(texts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Transcripts = append(r.Transcripts, texts...)
}

func (r *FakeRecognizer) Starts() int    { r.mu.Lock(); defer r.mu.Unlock(); return r.starts }
func (r *FakeRecognizer) Stops() int     { r.mu.Lock(); defer r.mu.Unlock(); return r.stops }
func (r *FakeRecognizer) TextCalls() int { r.mu.Lock(); defer r.mu.Unlock(); return r.textCalls }
func (r *FakeRecognizer) Shutdowns() int { r.mu.Lock(); defer r.mu.Unlock(); return r.shutdowns }
func (r *FakeRecognizer) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// FakeNotifier records notifications
type FakeNotifier struct {
	mu     sync.Mutex
	Events []string
	Errors []string
}

func (n *FakeNotifier) RecordingStarted()   { n.add("recording_started") }
func (n *FakeNotifier) RecordingStopped()   { n.add("recording_stopped") }
func (n *FakeNotifier) RecordingCancelled() { n.add("recording_cancelled") }
func (n *FakeNotifier) Injected(text string) {
	n.add("injected:" + text)
}
func (n *FakeNotifier) Retracted(chars int) { n.add("retracted") }

func (n *FakeNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, msg)
}

func (n *FakeNotifier) add(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, event)
}

func (n *FakeNotifier) ErrorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Errors)
}

func (n *FakeNotifier) Has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Eventually polls cond until it holds or the timeout elapses
func Eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
