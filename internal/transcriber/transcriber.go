// Package transcriber turns a finished utterance of PCM audio into text.
package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Adapter transcribes one utterance of 16-bit little-endian PCM.
type Adapter interface {
	Name() string
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderWhisperCpp = "whisper-cpp"
)

var ValidProviders = []string{ProviderOpenAI, ProviderGroq, ProviderWhisperCpp}

type Config struct {
	Provider   string
	APIKey     string
	Language   string
	Model      string
	ModelPath  string
	Threads    int
	SampleRate int
	Channels   int
	Timeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Provider:   ProviderOpenAI,
		Model:      "whisper-1",
		SampleRate: 16000,
		Channels:   1,
		Timeout:    30 * time.Second,
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGroq:
		return "whisper-large-v3-turbo"
	case ProviderOpenAI:
		return "whisper-1"
	default:
		return ""
	}
}

// APIKeyEnv names the environment variable consulted when no key is configured.
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGroq:
		return "GROQ_API_KEY"
	default:
		return ""
	}
}

func New(config Config) (Adapter, error) {
	if config.Model == "" {
		config.Model = DefaultModel(config.Provider)
	}
	if config.SampleRate == 0 {
		config.SampleRate = 16000
	}
	if config.Channels == 0 {
		config.Channels = 1
	}
	if config.APIKey == "" {
		if env := APIKeyEnv(config.Provider); env != "" {
			config.APIKey = os.Getenv(env)
		}
	}

	switch config.Provider {
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required (set transcription.api_key or OPENAI_API_KEY)")
		}
		return NewOpenAI(config), nil
	case ProviderGroq:
		if config.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required (set transcription.api_key or GROQ_API_KEY)")
		}
		return NewGroq(config), nil
	case ProviderWhisperCpp:
		if config.ModelPath == "" {
			return nil, fmt.Errorf("whisper-cpp requires transcription.model_path")
		}
		return NewWhisperCpp(config), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
