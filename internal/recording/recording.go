// Package recording captures microphone audio as raw PCM through pw-record.
package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

type Frame struct {
	Data      []byte
	Timestamp time.Time
}

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16le",
		BufferSize:        4096,
		ChannelBufferSize: 32,
	}
}

// BytesPerSecond is the PCM data rate for the configured format.
func (c Config) BytesPerSecond() int {
	return c.SampleRate * c.Channels * 2
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid channels: %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid buffer size: %d", c.BufferSize)
	}
	if c.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid channel buffer size: %d", c.ChannelBufferSize)
	}
	if c.Format != "s16le" {
		return fmt.Errorf("unsupported sample format %q (only s16le)", c.Format)
	}
	if c.BufferSize%(2*c.Channels) != 0 {
		return fmt.Errorf("buffer size %d not aligned to frame size %d", c.BufferSize, 2*c.Channels)
	}
	return nil
}

// Source produces audio frames until stopped. Frames and errors are closed
// when capture ends.
type Source interface {
	Start(ctx context.Context) (<-chan Frame, <-chan error, error)
	Stop() error
}

type Recorder struct {
	config    Config
	recording atomic.Bool
	logger    *log.Logger

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{config: config, logger: logging.For("recording")}
}

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

func (r *Recorder) Start(ctx context.Context) (<-chan Frame, <-chan error, error) {
	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}
	if !r.recording.CompareAndSwap(false, true) {
		return nil, nil, fmt.Errorf("already recording")
	}

	captureCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(captureCtx, "pw-record", r.args()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		r.recording.Store(false)
		return nil, nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		r.recording.Store(false)
		return nil, nil, fmt.Errorf("create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		r.recording.Store(false)
		return nil, nil, fmt.Errorf("start pw-record: %w", err)
	}

	r.mu.Lock()
	r.cmd = cmd
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			r.logger.Debug("pw-record", "stderr", scanner.Text())
		}
	}()

	frames := make(chan Frame, r.config.ChannelBufferSize)
	errs := make(chan error, 1)
	go r.capture(captureCtx, stdout, frames, errs)

	r.logger.Debug("capture started", "rate", r.config.SampleRate, "device", r.config.Device)
	return frames, errs, nil
}

// Stop ends capture. Frames already read are still delivered before the
// frame channel closes.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

func (r *Recorder) capture(ctx context.Context, stdout io.Reader, frames chan<- Frame, errs chan<- error) {
	defer func() {
		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		if r.cancel != nil {
			r.cancel()
			r.cancel = nil
		}
		r.mu.Unlock()

		close(frames)
		close(errs)
		r.recording.Store(false)
	}()

	buf := make([]byte, r.config.BufferSize)
	dropped := 0
	for {
		n, readErr := stdout.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case frames <- Frame{Data: data, Timestamp: time.Now()}:
			default:
				dropped++
			}
		}

		if readErr != nil {
			if dropped > 0 {
				r.logger.Warn("dropped audio frames due to backpressure", "frames", dropped)
			}
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrClosedPipe) || ctx.Err() != nil {
				return
			}
			errs <- fmt.Errorf("read audio: %w", readErr)
			return
		}
	}
}

func (r *Recorder) args() []string {
	args := []string{
		"--format", "s16",
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	return append(args, "-")
}

// Collect drains a capture into one PCM buffer. It returns when frames is
// closed or ctx is done.
func Collect(ctx context.Context, frames <-chan Frame, errs <-chan error) ([]byte, error) {
	var pcm []byte
	var captureErr error
	for frames != nil || errs != nil {
		select {
		case <-ctx.Done():
			return pcm, ctx.Err()
		case f, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			pcm = append(pcm, f.Data...)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if captureErr == nil {
				captureErr = err
			}
		}
	}
	return pcm, captureErr
}

// Duration reports how much audio n bytes of PCM hold.
func (c Config) Duration(n int) time.Duration {
	bps := c.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(bps)
}

// CheckPipeWire verifies pw-record exists and the PipeWire daemon answers.
func CheckPipeWire(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pw-cli", "info").Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}
