package config

import (
	"time"

	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/notify"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

// DefaultConfig returns the configuration used when no file exists and the
// base every file is decoded onto.
func DefaultConfig() *Config {
	return &Config{
		Dictation: DictationConfig{
			PushToTalkKey:      "f9",
			EscapeKey:          "esc",
			RecordingIndicator: ";",
			DeleteKeywords:     Keywords{Words: DefaultKeywords()},
			StripWhitespace:    true,
			FastDelete:         true,
			KeyInterval:        10 * time.Millisecond,
			SettleDelay:        200 * time.Millisecond,
		},
		Hotkey: HotkeyConfig{
			Source: hotkey.SourceEvdev,
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16le",
			BufferSize:        4096,
			ChannelBufferSize: 32,
			MinDuration:       300 * time.Millisecond,
		},
		Transcription: TranscriptionConfig{
			Provider: transcriber.ProviderOpenAI,
			Timeout:  30 * time.Second,
		},
		Injection: InjectionConfig{
			Backends: []string{"ydotool", "wtype", "xdotool"},
			Timeout:  5 * time.Second,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    notify.TypeDesktop,
		},
		Logging: LoggingConfig{
			Level:      "info",
			TimeFormat: "15:04:05",
		},
		Run: RunConfig{
			Binary: "claude",
		},
	}
}
