package session

import (
	"time"

	"github.com/codespeak-dev/codespeak/internal/injection"
	"github.com/codespeak-dev/codespeak/internal/textproc"
)

// Settings is the read-only configuration snapshot a controller runs with.
type Settings struct {
	PushToTalkKey      string
	EscapeKey          string
	RecordingIndicator string
	DeleteEnabled      bool
	DeleteKeywords     []string
	StripWhitespace    bool
	FastDelete         bool
	KeyInterval        time.Duration
	SettleDelay        time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		PushToTalkKey:      "f9",
		EscapeKey:          "esc",
		RecordingIndicator: ";",
		DeleteEnabled:      true,
		DeleteKeywords:     []string{"delete", "delete last", "delete last input"},
		StripWhitespace:    true,
		FastDelete:         true,
		KeyInterval:        10 * time.Millisecond,
		SettleDelay:        200 * time.Millisecond,
	}
}

func (s Settings) classifierConfig() textproc.Config {
	return textproc.Config{
		StripWhitespace: s.StripWhitespace,
		DeleteEnabled:   s.DeleteEnabled,
		DeleteKeywords:  s.DeleteKeywords,
	}
}

func (s Settings) engineConfig() injection.EngineConfig {
	return injection.EngineConfig{
		Interval: s.KeyInterval,
		Strategy: injection.StrategyFor(s.FastDelete),
	}
}
