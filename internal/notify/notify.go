// Package notify reports session events to the operator.
package notify

import (
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/codespeak-dev/codespeak/internal/logging"
)

type Notifier interface {
	RecordingStarted()
	RecordingStopped()
	RecordingCancelled()
	Injected(text string)
	Retracted(chars int)
	Error(msg string)
}

const (
	TypeDesktop = "desktop"
	TypeLog     = "log"
	TypeNone    = "none"
)

var ValidTypes = []string{TypeDesktop, TypeLog, TypeNone}

func New(kind string) (Notifier, error) {
	switch kind {
	case TypeDesktop:
		return NewDesktop(), nil
	case TypeLog, "":
		return Log{}, nil
	case TypeNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unsupported notification type: %s", kind)
	}
}

const appName = "codespeak"

// Desktop sends notifications through notify-send.
type Desktop struct {
	send func(args ...string) error
}

func NewDesktop() *Desktop {
	return &Desktop{send: notifySend}
}

func notifySend(args ...string) error {
	return exec.Command("notify-send", args...).Run()
}

func (d *Desktop) notify(urgency, title, body string) {
	args := []string{"-a", appName, "-u", urgency, title}
	if body != "" {
		args = append(args, body)
	}
	if err := d.send(args...); err != nil {
		logging.For("notify").Warn("failed to send notification", "err", err)
	}
}

func (d *Desktop) RecordingStarted()   { d.notify("low", "Recording", "") }
func (d *Desktop) RecordingStopped()   { d.notify("low", "Recording stopped", "") }
func (d *Desktop) RecordingCancelled() { d.notify("low", "Recording cancelled", "") }

func (d *Desktop) Injected(text string) {
	d.notify("low", "Typed", preview(text, 60))
}

func (d *Desktop) Retracted(chars int) {
	d.notify("low", "Deleted last input", fmt.Sprintf("%d characters", chars))
}

func (d *Desktop) Error(msg string) {
	d.notify("critical", "codespeak error", msg)
}

// Log writes events to the structured logger.
type Log struct{}

func (Log) RecordingStarted()   { logging.For("notify").Info("recording started") }
func (Log) RecordingStopped()   { logging.For("notify").Info("recording stopped") }
func (Log) RecordingCancelled() { logging.For("notify").Info("recording cancelled") }
func (Log) Injected(text string) {
	logging.For("notify").Info("typed", "text", preview(text, 60))
}
func (Log) Retracted(chars int) { logging.For("notify").Info("deleted last input", "chars", chars) }
func (Log) Error(msg string)    { logging.For("notify").Error(msg) }

// Nop is a Notifier that does absolutely nothing.
type Nop struct{}

func (Nop) RecordingStarted()    {}
func (Nop) RecordingStopped()    {}
func (Nop) RecordingCancelled()  {}
func (Nop) Injected(text string) {}
func (Nop) Retracted(chars int)  {}
func (Nop) Error(msg string)     {}

func preview(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	r := []rune(text)
	return string(r[:max-1]) + "…"
}
