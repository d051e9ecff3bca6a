// Package recognizer records an utterance between Start and Stop and hands
// the captured audio to a transcriber.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/logging"
	"github.com/codespeak-dev/codespeak/internal/recording"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

var (
	ErrShutdown       = errors.New("recognizer: shut down")
	ErrAlreadyStarted = errors.New("recognizer: already recording")
)

// InitError means the recognizer could not be built at all.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	if e == nil || e.Err == nil {
		return "recognizer initialization failed"
	}
	return "recognizer initialization failed: " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsInitError(err error) bool {
	var initErr *InitError
	return errors.As(err, &initErr)
}

type Config struct {
	Recording     recording.Config
	Transcription transcriber.Config
	// MinDuration is the shortest capture worth transcribing.
	MinDuration time.Duration
}

type Recognizer struct {
	source      recording.Source
	adapter     transcriber.Adapter
	audio       recording.Config
	minDuration time.Duration
	logger      *log.Logger

	mu        sync.Mutex
	capturing bool
	shutdown  bool
	cancel    context.CancelFunc
	done      chan struct{}
	pcm       []byte
	err       error
}

// New builds a recognizer backed by pw-record and the configured transcriber.
func New(config Config) (*Recognizer, error) {
	if err := config.Recording.Validate(); err != nil {
		return nil, &InitError{Err: fmt.Errorf("recording: %w", err)}
	}
	adapter, err := transcriber.New(config.Transcription)
	if err != nil {
		return nil, &InitError{Err: err}
	}
	return NewWith(recording.NewRecorder(config.Recording), adapter, config), nil
}

func NewWith(source recording.Source, adapter transcriber.Adapter, config Config) *Recognizer {
	return &Recognizer{
		source:      source,
		adapter:     adapter,
		audio:       config.Recording,
		minDuration: config.MinDuration,
		logger:      logging.For("recognizer"),
	}
}

// Start begins capturing. Audio from a previous capture that was never read
// is discarded.
func (r *Recognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown {
		return ErrShutdown
	}
	if r.capturing {
		return ErrAlreadyStarted
	}

	// The capture outlives the caller's request; Stop ends it.
	captureCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	frames, errs, err := r.source.Start(captureCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("start capture: %w", err)
	}

	done := make(chan struct{})
	r.capturing = true
	r.cancel = cancel
	r.done = done
	r.pcm = nil
	r.err = nil

	go func() {
		defer close(done)
		pcm, err := recording.Collect(captureCtx, frames, errs)
		r.mu.Lock()
		r.pcm = pcm
		if err != nil && !errors.Is(err, context.Canceled) {
			r.err = err
		}
		r.mu.Unlock()
	}()

	r.logger.Debug("capture started", "transcriber", r.adapter.Name())
	return nil
}

// Stop ends the capture and waits until the audio is buffered. Stopping when
// not capturing is a no-op.
func (r *Recognizer) Stop() error {
	r.mu.Lock()
	if !r.capturing {
		r.mu.Unlock()
		return nil
	}
	r.capturing = false
	done, cancel := r.done, r.cancel
	r.mu.Unlock()

	stopErr := r.source.Stop()
	<-done
	cancel()

	r.mu.Lock()
	captured := len(r.pcm)
	r.mu.Unlock()
	r.logger.Debug("capture stopped", "audio", r.audio.Duration(captured))

	if stopErr != nil {
		return fmt.Errorf("stop capture: %w", stopErr)
	}
	return nil
}

// Text transcribes the most recent capture, stopping it first if needed. The
// buffered audio is consumed: a second call returns an empty transcript.
func (r *Recognizer) Text(ctx context.Context) (string, error) {
	if err := r.Stop(); err != nil {
		return "", err
	}

	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return "", ErrShutdown
	}
	pcm, captureErr := r.pcm, r.err
	r.pcm, r.err = nil, nil
	r.mu.Unlock()

	if captureErr != nil && len(pcm) == 0 {
		return "", fmt.Errorf("capture audio: %w", captureErr)
	}
	if captureErr != nil {
		r.logger.Warn("capture ended early, transcribing partial audio", "err", captureErr)
	}

	if d := r.audio.Duration(len(pcm)); len(pcm) == 0 || d < r.minDuration {
		r.logger.Debug("capture too short to transcribe", "audio", d)
		return "", nil
	}

	text, err := r.adapter.Transcribe(ctx, pcm)
	if err != nil {
		if transcriber.NeedsSetup(err) {
			r.logger.Error("transcription will keep failing until fixed, see `codespeak doctor`", "err", err)
		}
		return "", err
	}
	return text, nil
}

// Shutdown stops any capture and releases the recognizer. A second call
// returns ErrShutdown.
func (r *Recognizer) Shutdown() error {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return ErrShutdown
	}
	r.mu.Unlock()

	err := r.Stop()

	r.mu.Lock()
	r.shutdown = true
	r.pcm = nil
	r.mu.Unlock()
	return err
}
