package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

// WhisperCpp runs the whisper.cpp CLI on a temporary WAV file.
type WhisperCpp struct {
	modelPath  string
	language   string
	threads    int
	sampleRate int
	channels   int
	logger     *log.Logger
}

func NewWhisperCpp(config Config) *WhisperCpp {
	return &WhisperCpp{
		modelPath:  config.ModelPath,
		language:   config.Language,
		threads:    config.Threads,
		sampleRate: config.SampleRate,
		channels:   config.Channels,
		logger:     logging.For("transcriber").With("provider", ProviderWhisperCpp),
	}
}

func (w *WhisperCpp) Name() string { return ProviderWhisperCpp }

func (w *WhisperCpp) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}

	if _, err := os.Stat(w.modelPath); os.IsNotExist(err) {
		return "", needsSetup(fmt.Errorf("model file not found: %s", w.modelPath))
	}

	bin, err := exec.LookPath("whisper-cli")
	if err != nil {
		return "", needsSetup(fmt.Errorf("whisper-cli not found: install whisper.cpp first"))
	}

	tmpFile, err := tempWAV(pcm, w.sampleRate, w.channels)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpFile)

	cmd := exec.CommandContext(ctx, bin, w.args(tmpFile)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		w.logger.Warn("whisper-cli failed", "elapsed", time.Since(start), "stderr", strings.TrimSpace(stderr.String()))
		return "", fmt.Errorf("whisper-cli failed: %w", err)
	}

	text := strings.TrimSpace(stdout.String())
	w.logger.Debug("transcribed", "bytes", len(pcm), "elapsed", time.Since(start))
	return text, nil
}

func (w *WhisperCpp) args(wavPath string) []string {
	lang := w.language
	if lang == "" {
		lang = "auto"
	}
	args := []string{
		"-m", w.modelPath,
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", wavPath,
	}
	if w.threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.threads))
	}
	return args
}
