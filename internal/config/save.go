package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

const fileTemplate = `# codespeak configuration
# A running "codespeak serve" picks up changes to this file automatically.

# Push-to-talk behaviour
[dictation]
  push_to_talk_key = {{q .Dictation.PushToTalkKey}}        # starts and stops recording: a name (f9, space), one character, or vk_<code>
  escape_key = {{q .Dictation.EscapeKey}}                  # discards the recording in progress
  recording_indicator = {{q .Dictation.RecordingIndicator}}          # typed while recording, removed afterwards ("" = none)
  delete_keywords = {{keywords .Dictation.DeleteKeywords}}  # phrases that delete the last input (false = off)
  strip_whitespace = {{.Dictation.StripWhitespace}}            # trim the transcript before matching
  fast_delete = {{.Dictation.FastDelete}}                 # send all backspaces at once instead of one by one
  key_interval = {{dur .Dictation.KeyInterval}}             # pause between keystrokes
  settle_delay = {{dur .Dictation.SettleDelay}}            # pause around indicator and recorder changes

# Where hotkeys come from
[hotkey]
  source = {{q .Hotkey.Source}}                   # evdev (keyboard devices) or socket ("codespeak press")
  devices = {{list .Hotkey.Devices}}                     # evdev device paths (empty = all keyboards)

# Audio capture (PipeWire)
[recording]
  sample_rate = {{.Recording.SampleRate}}
  channels = {{.Recording.Channels}}
  format = {{q .Recording.Format}}
  buffer_size = {{.Recording.BufferSize}}
  device = {{q .Recording.Device}}                       # PipeWire target (empty = default microphone)
  channel_buffer_size = {{.Recording.ChannelBufferSize}}
  min_duration = {{dur .Recording.MinDuration}}           # shorter captures are treated as silence

# Speech to text
[transcription]
  provider = {{q .Transcription.Provider}}               # openai, groq or whisper-cpp
  api_key = {{q .Transcription.APIKey}}                      # empty = OPENAI_API_KEY / GROQ_API_KEY (environment or .env)
  language = {{q .Transcription.Language}}                     # ISO-639-1 code (empty = auto-detect)
  model = {{q .Transcription.Model}}                        # empty = provider default
  model_path = {{q .Transcription.ModelPath}}                   # whisper-cpp model file (see codespeak models)
  threads = {{.Transcription.Threads}}                       # whisper-cpp threads (0 = CPUs - 1)
  timeout = {{dur .Transcription.Timeout}}

# Typing into the focused window
[injection]
  backends = {{list .Injection.Backends}}  # tried in order: ydotool, wtype, xdotool, clipboard, none
  timeout = {{dur .Injection.Timeout}}

[notifications]
  enabled = {{.Notifications.Enabled}}
  type = {{q .Notifications.Type}}                   # desktop, log or none

[logging]
  level = {{q .Logging.Level}}                     # debug, info, warn or error
  time_format = {{q .Logging.TimeFormat}}
  show_caller = {{.Logging.ShowCaller}}

# codespeak run
[run]
  binary = {{q .Run.Binary}}
`

var tmpl = template.Must(template.New("config").Funcs(template.FuncMap{
	"q":        quote,
	"dur":      func(d time.Duration) string { return quote(d.String()) },
	"list":     quoteList,
	"keywords": keywordsValue,
}).Parse(fileTemplate))

// quote renders s as a TOML basic string.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func quoteList(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = quote(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func keywordsValue(k Keywords) string {
	if k.Disabled {
		return strconv.FormatBool(false)
	}
	return quoteList(k.Words)
}

// Encode renders c as a commented TOML file.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, c); err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Render prints c in the given format for display.
func (c *Config) Render(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatTOML, "":
		return c.Encode()
	case FormatYAML, "yml":
		out, err := yaml.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("render config as yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (use toml or yaml)", format)
	}
}

// Save writes c to path, replacing the file atomically.
func (c *Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// SaveDefaultConfig writes the defaults to the standard location.
func SaveDefaultConfig() (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return path, DefaultConfig().Save(path)
}
