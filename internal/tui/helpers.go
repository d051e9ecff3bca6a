package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/language"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

var providerDisplayNames = map[string]string{
	transcriber.ProviderOpenAI:     "OpenAI (whisper-1)",
	transcriber.ProviderGroq:       "Groq (whisper-large-v3-turbo)",
	transcriber.ProviderWhisperCpp: "whisper.cpp (local, offline)",
}

var backendDescriptions = map[string]string{
	"ydotool":   "ydotool: uinput, works everywhere (needs ydotoold)",
	"wtype":     "wtype: Wayland virtual keyboard",
	"xdotool":   "xdotool: X11",
	"clipboard": "clipboard: paste via wl-copy/xclip and uinput",
	"none":      "none: log only, type nothing",
}

func providerOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(transcriber.ValidProviders))
	for i, p := range transcriber.ValidProviders {
		opts[i] = huh.NewOption(providerDisplayNames[p], p)
	}
	return opts
}

func languageOptions() []huh.Option[string] {
	all := language.All()
	opts := make([]huh.Option[string], 0, len(all)+1)
	opts = append(opts, huh.NewOption(language.Auto.Label(), ""))
	for _, l := range all {
		opts = append(opts, huh.NewOption(l.Label(), l.Code))
	}
	return opts
}

func backendOptions(selected []string) []huh.Option[string] {
	order := []string{"ydotool", "wtype", "xdotool", "clipboard", "none"}
	opts := make([]huh.Option[string], len(order))
	for i, b := range order {
		opts[i] = huh.NewOption(backendDescriptions[b], b).Selected(slices.Contains(selected, b))
	}
	return opts
}

// validateKey accepts anything keys.Parse understands.
func validateKey(s string) error {
	if _, err := keys.Parse(s); err != nil {
		return err
	}
	return nil
}

// parseKeywords reads the comma separated keyword field. "off", "none" and
// "false" disable delete commands.
func parseKeywords(s string) config.Keywords {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "false":
		return config.Keywords{Disabled: true}
	case "", "default", "true":
		return config.Keywords{Words: config.DefaultKeywords()}
	}
	var words []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return config.Keywords{Words: words}
}

func formatKeywords(k config.Keywords) string {
	if !k.Enabled() {
		return "off"
	}
	return strings.Join(k.Words, ", ")
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return d, nil
}

func validateDuration(s string) error {
	_, err := parseDuration(s)
	return err
}

func formatLanguage(code string) string {
	l, ok := language.Lookup(code)
	if !ok {
		return code
	}
	return l.Label()
}

func formatIndicator(s string) string {
	if s == "" {
		return "none"
	}
	return fmt.Sprintf("%q", s)
}

// maskKey shows only the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return "(from environment)"
	}
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("•", len(r))
	}
	return strings.Repeat("•", 4) + string(r[len(r)-4:])
}

func sectionLabel(cfg *config.Config, s Section) string {
	d := cfg.Dictation
	switch s {
	case SectionKeys:
		return fmt.Sprintf("Keys (record %s, cancel %s)", keys.Canonical(d.PushToTalkKey), keys.Canonical(d.EscapeKey))
	case SectionDictation:
		return fmt.Sprintf("Dictation (indicator %s, delete: %s)", formatIndicator(d.RecordingIndicator), formatKeywords(d.DeleteKeywords))
	case SectionTranscription:
		return fmt.Sprintf("Transcription (%s, %s)", cfg.Transcription.Provider, formatLanguage(cfg.Transcription.Language))
	case SectionInjection:
		return fmt.Sprintf("Typing (%s)", strings.Join(cfg.Injection.Backends, " -> "))
	case SectionHotkey:
		return fmt.Sprintf("Hotkey source (%s)", cfg.Hotkey.Source)
	case SectionNotifications:
		if !cfg.Notifications.Enabled {
			return "Notifications (off)"
		}
		return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
	case SectionSaveExit:
		return "Save & Exit"
	case SectionDiscardExit:
		return "Discard & Exit"
	default:
		return string(s)
	}
}
