package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/logging"
	"github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// whisperAPI talks to any OpenAI-compatible /audio/transcriptions endpoint.
type whisperAPI struct {
	name   string
	client *openai.Client
	config Config
	logger *log.Logger
}

func NewOpenAI(config Config) Adapter {
	return newWhisperAPI(ProviderOpenAI, openai.DefaultConfig(config.APIKey), config)
}

func NewGroq(config Config) Adapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = groqBaseURL
	return newWhisperAPI(ProviderGroq, clientConfig, config)
}

func newWhisperAPI(name string, clientConfig openai.ClientConfig, config Config) *whisperAPI {
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	return &whisperAPI{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logging.For("transcriber").With("provider", name),
	}
}

func (a *whisperAPI) Name() string { return a.name }

func (a *whisperAPI) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}

	path, err := tempWAV(pcm, a.config.SampleRate, a.config.Channels)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	req := openai.AudioRequest{
		Model:    a.config.Model,
		FilePath: path,
		Language: a.config.Language,
		Format:   openai.AudioResponseFormatJSON,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		a.logger.Warn("transcription request failed", "elapsed", elapsed, "err", err)
		return "", classifyAPIError(a.name, err)
	}

	a.logger.Debug("transcribed", "bytes", len(pcm), "elapsed", elapsed)
	return strings.TrimSpace(resp.Text), nil
}

// classifyAPIError marks credential and request-shape failures as setup errors so
// the session reports them instead of silently retrying every utterance.
func classifyAPIError(provider string, err error) error {
	wrapped := fmt.Errorf("%s transcription: %w", provider, err)

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return needsSetup(wrapped)
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return needsSetup(wrapped)
		}
	}
	return wrapped
}
