package config

import (
	"slices"

	"dario.cat/mergo"

	"github.com/codespeak-dev/codespeak/internal/injection"
	"github.com/codespeak-dev/codespeak/internal/logging"
	"github.com/codespeak-dev/codespeak/internal/notify"
	"github.com/codespeak-dev/codespeak/internal/recognizer"
	"github.com/codespeak-dev/codespeak/internal/recording"
	"github.com/codespeak-dev/codespeak/internal/session"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

func (c *Config) ToSettings() session.Settings {
	d := c.Dictation
	return session.Settings{
		PushToTalkKey:      d.PushToTalkKey,
		EscapeKey:          d.EscapeKey,
		RecordingIndicator: d.RecordingIndicator,
		DeleteEnabled:      d.DeleteKeywords.Enabled(),
		DeleteKeywords:     slices.Clone(d.DeleteKeywords.Words),
		StripWhitespace:    d.StripWhitespace,
		FastDelete:         d.FastDelete,
		KeyInterval:        d.KeyInterval,
		SettleDelay:        d.SettleDelay,
	}
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	t := c.Transcription
	model := t.Model
	if model == "" {
		model = transcriber.DefaultModel(t.Provider)
	}
	return transcriber.Config{
		Provider:   t.Provider,
		APIKey:     c.resolveAPIKey(),
		Language:   t.Language,
		Model:      model,
		ModelPath:  t.ModelPath,
		Threads:    t.Threads,
		SampleRate: c.Recording.SampleRate,
		Channels:   c.Recording.Channels,
		Timeout:    t.Timeout,
	}
}

func (c *Config) ToRecognizerConfig() recognizer.Config {
	return recognizer.Config{
		Recording:     c.ToRecordingConfig(),
		Transcription: c.ToTranscriberConfig(),
		MinDuration:   c.Recording.MinDuration,
	}
}

func (c *Config) ToInjectionConfig() injection.Config {
	return injection.Config{
		Backends: slices.Clone(c.Injection.Backends),
		Timeout:  c.Injection.Timeout,
	}
}

func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		TimeFormat: c.Logging.TimeFormat,
		ShowCaller: c.Logging.ShowCaller,
	}
}

// NotifierType is the notifier to build, none when notifications are off.
func (c *Config) NotifierType() string {
	if !c.Notifications.Enabled {
		return notify.TypeNone
	}
	return c.Notifications.Type
}

// Overrides are command-line values layered over the file. Zero values
// leave the file's setting alone.
type Overrides struct {
	PushToTalkKey string
	EscapeKey     string
	HotkeySource  string
	Provider      string
	Language      string
	Backends      []string
	LogLevel      string
}

func (c *Config) ApplyOverrides(o Overrides) error {
	patch := Config{
		Dictation: DictationConfig{
			PushToTalkKey: o.PushToTalkKey,
			EscapeKey:     o.EscapeKey,
		},
		Hotkey:        HotkeyConfig{Source: o.HotkeySource},
		Transcription: TranscriptionConfig{Provider: o.Provider, Language: o.Language},
		Injection:     InjectionConfig{Backends: o.Backends},
		Logging:       LoggingConfig{Level: o.LogLevel},
	}
	if err := mergo.Merge(c, patch, mergo.WithOverride); err != nil {
		return err
	}
	c.normalize()
	return nil
}
