// Package session implements the push-to-talk dictation state machine: the
// hotkey toggles recording, the transcript is typed into the focused window,
// and a spoken delete keyword takes back the last utterance.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/injection"
	"github.com/codespeak-dev/codespeak/internal/logging"
	"github.com/codespeak-dev/codespeak/internal/notify"
	"github.com/codespeak-dev/codespeak/internal/textproc"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

type State int

const (
	Idle State = iota
	ActiveIdle
	ActiveRecording
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ActiveIdle:
		return "ready"
	case ActiveRecording:
		return "recording"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Recognizer captures one utterance at a time. Text returns the transcript
// of the capture that just ended; an empty string means no speech.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop() error
	Text(ctx context.Context) (string, error)
	Shutdown() error
}

type Deps struct {
	Recognizer Recognizer
	Hook       hotkey.Hook
	Keyboard   injection.Keyboard
	Notifier   notify.Notifier
}

// Status is a point-in-time view for status reporting.
type Status struct {
	State       State
	UndoDepth   int
	RecordingID string
	Recording   time.Duration
}

const shutdownTimeout = 10 * time.Second

type Controller struct {
	settings   Settings
	rec        Recognizer
	hook       hotkey.Hook
	engine     *injection.Engine
	classifier *textproc.Classifier
	notifier   notify.Notifier
	logger     *log.Logger
	sleep      func(time.Duration)

	mu           sync.Mutex
	state        State
	started      bool
	closed       bool
	ctx          context.Context
	onText       func(string)
	undo         *injection.UndoStack
	indicatorLen int
	recordingID  string
	recordingAt  time.Time
}

func New(settings Settings, deps Deps) *Controller {
	n := deps.Notifier
	if n == nil {
		n = notify.Nop{}
	}
	return &Controller{
		settings:   settings,
		rec:        deps.Recognizer,
		hook:       deps.Hook,
		engine:     injection.NewEngine(deps.Keyboard, settings.engineConfig()),
		classifier: textproc.NewClassifier(settings.classifierConfig()),
		notifier:   n,
		logger:     logging.For("session"),
		sleep:      time.Sleep,
		undo:       injection.NewUndoStack(),
	}
}

// Start registers the hotkeys and makes the session ready to record. onText
// is called once for every utterance that was typed successfully.
func (c *Controller) Start(ctx context.Context, onText func(string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	table, err := hotkey.BuildTable(c.settings.PushToTalkKey, c.settings.EscapeKey)
	if err != nil {
		return fmt.Errorf("build hotkey table: %w", err)
	}

	bindings := table.Bind(map[hotkey.Action]func(){
		hotkey.ToggleRecording: func() { c.onHotkey(hotkey.ToggleRecording) },
		hotkey.CancelRecording: func() { c.onHotkey(hotkey.CancelRecording) },
	})
	if err := c.hook.Register(bindings); err != nil {
		return fmt.Errorf("register hotkeys: %w", err)
	}

	c.ctx = ctx
	c.onText = onText
	c.started = true
	c.state = ActiveIdle
	c.logger.Info("session ready", "keys", table.Keys(), "backend", c.engine.Keyboard().Name(), "delete", c.engine.Strategy())
	return nil
}

func (c *Controller) onHotkey(action hotkey.Action) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	switch action {
	case hotkey.ToggleRecording:
		err = c.Toggle(ctx)
	case hotkey.CancelRecording:
		err = c.Cancel(ctx)
	}
	if err != nil {
		c.logger.Debug("hotkey handled with error", "action", action, "err", err)
	}
}

// Toggle starts recording when ready and finishes the recording in progress
// otherwise. Failures are reported and the session is always left ready.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	typed, onText, err := c.toggleLocked(ctx)
	c.mu.Unlock()

	if typed != "" && onText != nil {
		onText(typed)
	}
	return err
}

func (c *Controller) toggleLocked(ctx context.Context) (string, func(string), error) {
	if c.closed {
		return "", nil, ErrClosed
	}
	switch c.state {
	case ActiveIdle:
		return "", nil, c.beginRecording(ctx)
	case ActiveRecording:
		typed, err := c.finishRecording(ctx)
		return typed, c.onText, err
	default:
		return "", nil, ErrNotStarted
	}
}

// Cancel discards the recording in progress. It does nothing when not
// recording.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.state != ActiveRecording {
		return nil
	}

	c.sleep(c.settings.SettleDelay)
	err := c.endCapture(ctx)
	c.logger.Info("recording cancelled", "id", c.recordingID, "after", time.Since(c.recordingAt).Round(time.Millisecond))
	c.notifier.RecordingCancelled()
	return err
}

func (c *Controller) beginRecording(ctx context.Context) error {
	c.sleep(c.settings.SettleDelay)

	n, err := c.engine.TypeIndicator(ctx, c.settings.RecordingIndicator)
	if err != nil {
		ierr := &InjectionError{Op: "type indicator", Err: err}
		c.report(ierr)
		return ierr
	}
	c.indicatorLen = n

	c.sleep(c.settings.SettleDelay)

	if err := c.rec.Start(ctx); err != nil {
		serr := &RecognizerStartError{Err: err}
		c.report(serr)
		if rmErr := c.engine.RemoveIndicator(ctx, c.indicatorLen); rmErr != nil {
			c.report(&InjectionError{Op: "remove indicator", Err: rmErr})
		}
		c.indicatorLen = 0
		return serr
	}

	c.state = ActiveRecording
	c.recordingID = uuid.NewString()
	c.recordingAt = time.Now()
	c.logger.Info("recording started", "id", c.recordingID)
	c.notifier.RecordingStarted()
	return nil
}

// finishRecording ends the capture and acts on the transcript. It returns
// the text that was typed, if any.
func (c *Controller) finishRecording(ctx context.Context) (string, error) {
	c.sleep(c.settings.SettleDelay)
	stopErr := c.endCapture(ctx)
	c.logger.Info("recording stopped", "id", c.recordingID, "after", time.Since(c.recordingAt).Round(time.Millisecond))
	c.notifier.RecordingStopped()
	if stopErr != nil {
		return "", stopErr
	}

	c.sleep(c.settings.SettleDelay)

	raw, err := c.rec.Text(ctx)
	if err != nil {
		terr := &TranscriptionError{Err: err}
		c.report(terr)
		return "", terr
	}

	text := c.classifier.Normalize(raw)
	if text == "" {
		c.logger.Debug("no speech detected", "id", c.recordingID)
		return "", nil
	}

	if c.classifier.IsDeleteCommand(text) {
		n, err := c.engine.RetractLast(ctx, c.undo)
		if err != nil {
			ierr := &InjectionError{Op: "retract last input", Err: err}
			c.report(ierr)
			return "", ierr
		}
		c.logger.Info("deleted last input", "chars", n, "remaining", c.undo.Len())
		if n > 0 {
			c.notifier.Retracted(n)
		}
		return "", nil
	}

	if err := c.engine.Inject(ctx, raw); err != nil {
		ierr := &InjectionError{Op: "type transcript", Err: err}
		c.report(ierr)
		return "", ierr
	}
	c.undo.Push(raw)
	c.logger.Debug("typed transcript", "id", c.recordingID, "chars", injection.CharsToDelete(raw), "undo", c.undo.Len())
	c.notifier.Injected(raw)
	return raw, nil
}

// endCapture removes the indicator typed at start and stops the recognizer.
// The session is ready again whatever fails.
func (c *Controller) endCapture(ctx context.Context) error {
	c.state = ActiveIdle

	if err := c.engine.RemoveIndicator(ctx, c.indicatorLen); err != nil {
		c.report(&InjectionError{Op: "remove indicator", Err: err})
	}
	c.indicatorLen = 0

	if err := c.rec.Stop(); err != nil {
		terr := &TranscriptionError{Err: fmt.Errorf("stop recognizer: %w", err)}
		c.report(terr)
		return terr
	}
	return nil
}

func (c *Controller) report(err error) {
	if transcriber.NeedsSetup(err) {
		c.logger.Error("session error", "err", err)
	} else {
		c.logger.Warn("session error", "err", err)
	}
	c.notifier.Error(err.Error())
}

// Stop ends the session. A recording in progress is discarded, the hotkeys
// are released, the undo history is cleared and the recognizer is shut down.
// Calling Stop again is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	registered := c.started
	c.mu.Unlock()

	// Waits for an in-flight hotkey callback, which needs c.mu.
	if registered {
		if err := c.hook.Stop(); err != nil {
			c.logger.Warn("failed to release hotkeys", "err", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if c.state == ActiveRecording {
		c.endCapture(ctx)
		c.logger.Info("recording discarded on shutdown", "id", c.recordingID)
	}
	c.undo.Clear()

	if err := c.rec.Shutdown(); err != nil {
		c.logger.Debug("recognizer shutdown", "err", err)
	}

	c.state = Idle
	c.logger.Info("session stopped")
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) UndoDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.undo.Len()
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{State: c.state, UndoDepth: c.undo.Len()}
	if c.state == ActiveRecording {
		st.RecordingID = c.recordingID
		st.Recording = time.Since(c.recordingAt)
	}
	return st
}
