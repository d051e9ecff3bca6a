package injection

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

// Separator is typed after every injected utterance. Retraction deletes it
// together with the utterance.
const Separator = " "

type DeleteStrategy string

const (
	// Batch submits the whole run of backspaces as one request. Fast, but some
	// applications drop or coalesce keys under rapid injection.
	Batch DeleteStrategy = "batch"
	// Sequential presses one backspace at a time and waits in between.
	Sequential DeleteStrategy = "sequential"
)

// StrategyFor maps the fast_delete setting onto a strategy.
func StrategyFor(fastDelete bool) DeleteStrategy {
	if fastDelete {
		return Batch
	}
	return Sequential
}

// EngineConfig controls keystroke timing
type EngineConfig struct {
	Interval time.Duration
	Strategy DeleteStrategy
}

// Engine turns inject/retract decisions into keystrokes.
type Engine struct {
	kb     Keyboard
	config EngineConfig
	logger *log.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewEngine(kb Keyboard, config EngineConfig) *Engine {
	if config.Strategy == "" {
		config.Strategy = Batch
	}
	return &Engine{
		kb:     kb,
		config: config,
		logger: logging.For("injection"),
		sleep:  wait,
	}
}

func (e *Engine) Keyboard() Keyboard { return e.kb }

func (e *Engine) Strategy() DeleteStrategy { return e.config.Strategy }

// Inject types text followed by exactly one separator.
func (e *Engine) Inject(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("cannot inject empty text")
	}
	if err := e.kb.TypeText(ctx, text+Separator, e.config.Interval); err != nil {
		return fmt.Errorf("type text via %s: %w", e.kb.Name(), err)
	}
	e.logger.Debug("injected", "chars", utf8.RuneCountInString(text)+1, "backend", e.kb.Name())
	return nil
}

// CharsToDelete is the number of backspaces that remove an injected utterance.
func CharsToDelete(text string) int {
	return utf8.RuneCountInString(text) + utf8.RuneCountInString(Separator)
}

// RetractLast pops the most recent utterance and deletes it. An empty stack
// is a no-op. The returned count is the number of backspaces emitted.
func (e *Engine) RetractLast(ctx context.Context, stack *UndoStack) (int, error) {
	entry, ok := stack.Pop()
	if !ok {
		e.logger.Debug("nothing to retract")
		return 0, nil
	}
	return e.Retract(ctx, CharsToDelete(entry))
}

// Retract emits n backspaces using the configured strategy. Both strategies
// emit the same number of keystrokes.
func (e *Engine) Retract(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}

	switch e.config.Strategy {
	case Sequential:
		for i := 0; i < n; i++ {
			if err := e.kb.PressKey(ctx, keys.Backspace, e.config.Interval); err != nil {
				return i, fmt.Errorf("press backspace via %s: %w", e.kb.Name(), err)
			}
			if err := e.sleep(ctx, e.config.Interval); err != nil {
				return i + 1, err
			}
		}
	default:
		run := make([]string, n)
		for i := range run {
			run[i] = keys.Backspace
		}
		if err := e.kb.PressKeys(ctx, run, e.config.Interval); err != nil {
			return 0, fmt.Errorf("press backspaces via %s: %w", e.kb.Name(), err)
		}
	}

	e.logger.Debug("retracted", "chars", n, "strategy", e.config.Strategy)
	return n, nil
}

// TypeIndicator types the recording indicator and returns how many characters
// must later be removed.
func (e *Engine) TypeIndicator(ctx context.Context, indicator string) (int, error) {
	if indicator == "" {
		return 0, nil
	}
	if err := e.kb.TypeText(ctx, indicator, e.config.Interval); err != nil {
		return 0, fmt.Errorf("type indicator via %s: %w", e.kb.Name(), err)
	}
	return utf8.RuneCountInString(indicator), nil
}

// RemoveIndicator deletes n indicator characters typed earlier.
func (e *Engine) RemoveIndicator(ctx context.Context, n int) error {
	_, err := e.Retract(ctx, n)
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
