package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/codespeak-dev/codespeak/internal/injection"
	"github.com/codespeak-dev/codespeak/internal/notify"
)

// createTestConfig returns a valid configuration that does not depend on the
// environment.
func createTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Transcription.APIKey = "test-api-key"
	cfg.Hotkey.Devices = []string{"/dev/input/event3"}
	return cfg
}

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Dictation.PushToTalkKey != "f9" || cfg.Dictation.EscapeKey != "esc" {
		t.Errorf("keys = %q/%q", cfg.Dictation.PushToTalkKey, cfg.Dictation.EscapeKey)
	}
	if cfg.Dictation.RecordingIndicator != ";" {
		t.Errorf("indicator = %q", cfg.Dictation.RecordingIndicator)
	}
	if !cfg.Dictation.DeleteKeywords.Enabled() {
		t.Error("delete keywords should be enabled by default")
	}
	if cfg.Dictation.SettleDelay != 200*time.Millisecond {
		t.Errorf("settle delay = %v", cfg.Dictation.SettleDelay)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[dictation]
  push_to_talk_key = "F10"
  recording_indicator = ""
  delete_keywords = ["scratch that"]
  settle_delay = "50ms"

[transcription]
  provider = "Groq"
  language = "auto"
  api_key = "gsk-test"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Dictation.PushToTalkKey != "F10" {
		t.Errorf("push_to_talk_key = %q", cfg.Dictation.PushToTalkKey)
	}
	if cfg.Dictation.RecordingIndicator != "" {
		t.Errorf("indicator = %q, want empty", cfg.Dictation.RecordingIndicator)
	}
	if !reflect.DeepEqual(cfg.Dictation.DeleteKeywords.Words, []string{"scratch that"}) {
		t.Errorf("keywords = %v", cfg.Dictation.DeleteKeywords.Words)
	}
	if cfg.Dictation.SettleDelay != 50*time.Millisecond {
		t.Errorf("settle_delay = %v", cfg.Dictation.SettleDelay)
	}
	if cfg.Transcription.Provider != "groq" {
		t.Errorf("provider = %q, want normalized groq", cfg.Transcription.Provider)
	}
	if cfg.Transcription.Language != "" {
		t.Errorf("language = %q, want auto-detect", cfg.Transcription.Language)
	}
	// untouched keys keep their defaults
	if cfg.Dictation.EscapeKey != "esc" || !cfg.Dictation.FastDelete {
		t.Errorf("defaults lost: %+v", cfg.Dictation)
	}
	if cfg.Recording.SampleRate != 16000 {
		t.Errorf("sample_rate = %d", cfg.Recording.SampleRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("missing file error = %v, want ErrConfigNotFound", err)
	}

	path := writeFile(t, dir, "[dictation\npush_to_talk_key = ")
	if _, err := LoadFile(path); err == nil || errors.Is(err, ErrConfigNotFound) {
		t.Errorf("invalid toml error = %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if found {
		t.Error("found should be false without a file")
	}
	if cfg.Dictation.PushToTalkKey != "f9" {
		t.Errorf("want defaults, got %+v", cfg.Dictation)
	}
}

func TestDeleteKeywords(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		wantWords   []string
		wantEnabled bool
		wantErr     bool
	}{
		{"list", `["delete", "undo that"]`, []string{"delete", "undo that"}, true, false},
		{"false", `false`, nil, false, false},
		{"true", `true`, DefaultKeywords(), true, false},
		{"empty list", `[]`, []string{}, false, false},
		{"number in list", `["delete", 3]`, nil, false, true},
		{"string", `"delete"`, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "[dictation]\ndelete_keywords = "+tt.value+"\n")
			cfg, err := LoadFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			kw := cfg.Dictation.DeleteKeywords
			if !reflect.DeepEqual(kw.Words, tt.wantWords) {
				t.Errorf("words = %#v, want %#v", kw.Words, tt.wantWords)
			}
			if kw.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", kw.Enabled(), tt.wantEnabled)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty push-to-talk key", func(c *Config) { c.Dictation.PushToTalkKey = "" }, "dictation keys"},
		{"escape equals push-to-talk", func(c *Config) { c.Dictation.EscapeKey = "F9" }, "dictation keys"},
		{"negative key interval", func(c *Config) { c.Dictation.KeyInterval = -time.Millisecond }, "key_interval"},
		{"negative settle delay", func(c *Config) { c.Dictation.SettleDelay = -time.Second }, "settle_delay"},
		{"blank keyword", func(c *Config) { c.Dictation.DeleteKeywords.Words = []string{"delete", " "} }, "delete_keywords[1]"},
		{"unknown hotkey source", func(c *Config) { c.Hotkey.Source = "x11" }, "hotkey.source"},
		{"zero sample rate", func(c *Config) { c.Recording.SampleRate = 0 }, "recording"},
		{"unsupported format", func(c *Config) { c.Recording.Format = "f32le" }, "recording"},
		{"negative min duration", func(c *Config) { c.Recording.MinDuration = -1 }, "min_duration"},
		{"unknown provider", func(c *Config) { c.Transcription.Provider = "azure" }, "transcription.provider"},
		{"bad language", func(c *Config) { c.Transcription.Language = "klingon" }, "transcription.language"},
		{"no api key", func(c *Config) { c.Transcription.APIKey = "" }, "API key required"},
		{"zero transcription timeout", func(c *Config) { c.Transcription.Timeout = 0 }, "transcription.timeout"},
		{"whisper-cpp without model", func(c *Config) {
			c.Transcription.Provider = "whisper-cpp"
			c.Transcription.APIKey = ""
		}, "model_path"},
		{"whisper-cpp with model", func(c *Config) {
			c.Transcription.Provider = "whisper-cpp"
			c.Transcription.APIKey = ""
			c.Transcription.ModelPath = "/models/ggml-base.en.bin"
		}, ""},
		{"no backends", func(c *Config) { c.Injection.Backends = nil }, "injection.backends"},
		{"unknown backend", func(c *Config) { c.Injection.Backends = []string{"ydotool", "xdg"} }, "xdg"},
		{"clipboard backend", func(c *Config) { c.Injection.Backends = []string{"clipboard", "ydotool"} }, ""},
		{"zero injection timeout", func(c *Config) { c.Injection.Timeout = 0 }, "injection.timeout"},
		{"bad notification type", func(c *Config) { c.Notifications.Type = "email" }, "notifications.type"},
		{"disabled notifications skip type", func(c *Config) {
			c.Notifications.Enabled = false
			c.Notifications.Type = "email"
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"empty run binary", func(c *Config) { c.Run.Binary = " " }, "run.binary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-env")
	cfg := createTestConfig()
	cfg.Transcription.Provider = "groq"
	cfg.Transcription.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if got := cfg.ToTranscriberConfig().APIKey; got != "gsk-env" {
		t.Errorf("APIKey = %q, want env value", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := createTestConfig()
	cfg.Dictation.PushToTalkKey = "vk_191"
	cfg.Dictation.RecordingIndicator = `"rec" \ on`
	cfg.Dictation.DeleteKeywords = Keywords{Disabled: true}
	cfg.Dictation.KeyInterval = 25 * time.Millisecond
	cfg.Transcription.Language = "de"
	cfg.Injection.Backends = []string{"wtype", "none"}
	cfg.Notifications.Type = notify.TypeLog

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, cfg)
	}
}

func TestSaveDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codespeak", "config.toml")
	t.Setenv(PathEnv, path)

	written, err := SaveDefaultConfig()
	if err != nil {
		t.Fatalf("SaveDefaultConfig() error = %v", err)
	}
	if written != path {
		t.Errorf("path = %q, want %q", written, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `push_to_talk_key = "f9"`) {
		t.Errorf("file should contain the default key:\n%s", data)
	}
	if _, err := Load(); err != nil {
		t.Errorf("Load() after SaveDefaultConfig error = %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(PathEnv, "/tmp/custom.toml")
	if p, _ := GetConfigPath(); p != "/tmp/custom.toml" {
		t.Errorf("GetConfigPath() = %q with override", p)
	}

	t.Setenv(PathEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/home/test/.config")
	p, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/home/test/.config", "codespeak", "config.toml") {
		t.Errorf("GetConfigPath() = %q", p)
	}
}

func TestRender(t *testing.T) {
	cfg := createTestConfig()

	out, err := cfg.Render(FormatYAML)
	if err != nil {
		t.Fatalf("Render(yaml) error = %v", err)
	}
	for _, want := range []string{"push_to_talk_key: f9", "settle_delay: 200ms", "- delete last input"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}

	cfg.Dictation.DeleteKeywords = Keywords{Disabled: true}
	out, _ = cfg.Render("yml")
	if !strings.Contains(string(out), "delete_keywords: false") {
		t.Errorf("disabled keywords should render as false:\n%s", out)
	}

	out, err = cfg.Render(FormatTOML)
	if err != nil || !strings.Contains(string(out), "[dictation]") {
		t.Errorf("Render(toml) = %q, %v", out, err)
	}

	if _, err := cfg.Render("json"); err == nil {
		t.Error("Render(json) should fail")
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"f9", `"f9"`},
		{`a"b`, `"a\"b"`},
		{`c:\x`, `"c:\\x"`},
		{"line\nbreak", `"line\nbreak"`},
		{"bell\a", `"bell\u0007"`},
		{"•", `"•"`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToSettings(t *testing.T) {
	cfg := createTestConfig()
	cfg.Dictation.FastDelete = false
	s := cfg.ToSettings()

	if s.PushToTalkKey != "f9" || s.EscapeKey != "esc" || s.RecordingIndicator != ";" {
		t.Errorf("keys = %+v", s)
	}
	if !s.DeleteEnabled || len(s.DeleteKeywords) != 3 {
		t.Errorf("delete = %v %v", s.DeleteEnabled, s.DeleteKeywords)
	}
	if s.FastDelete {
		t.Error("FastDelete should follow the config")
	}

	s.DeleteKeywords[0] = "changed"
	if cfg.Dictation.DeleteKeywords.Words[0] == "changed" {
		t.Error("settings should not share the keyword slice")
	}

	cfg.Dictation.DeleteKeywords = Keywords{Disabled: true}
	if cfg.ToSettings().DeleteEnabled {
		t.Error("disabled keywords should disable deletion")
	}
}

func TestConversions(t *testing.T) {
	cfg := createTestConfig()
	cfg.Transcription.Provider = "groq"
	cfg.Recording.SampleRate = 48000

	tc := cfg.ToTranscriberConfig()
	if tc.Model != "whisper-large-v3-turbo" {
		t.Errorf("Model = %q, want provider default", tc.Model)
	}
	if tc.SampleRate != 48000 || tc.Channels != 1 {
		t.Errorf("audio = %d/%d", tc.SampleRate, tc.Channels)
	}

	rc := cfg.ToRecognizerConfig()
	if rc.MinDuration != cfg.Recording.MinDuration || rc.Recording.SampleRate != 48000 {
		t.Errorf("recognizer config = %+v", rc)
	}

	ic := cfg.ToInjectionConfig()
	if !reflect.DeepEqual(ic, injection.Config{Backends: []string{"ydotool", "wtype", "xdotool"}, Timeout: 5 * time.Second}) {
		t.Errorf("injection config = %+v", ic)
	}

	lc := cfg.ToLoggingConfig()
	if lc.Level != "info" || lc.TimeFormat != "15:04:05" {
		t.Errorf("logging config = %+v", lc)
	}

	if cfg.NotifierType() != notify.TypeDesktop {
		t.Errorf("NotifierType() = %q", cfg.NotifierType())
	}
	cfg.Notifications.Enabled = false
	if cfg.NotifierType() != notify.TypeNone {
		t.Errorf("NotifierType() = %q when disabled", cfg.NotifierType())
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := createTestConfig()
	cfg.Dictation.FastDelete = false

	err := cfg.ApplyOverrides(Overrides{
		PushToTalkKey: "f12",
		Provider:      "GROQ",
		Language:      "Auto",
		Backends:      []string{"wtype"},
	})
	if err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if cfg.Dictation.PushToTalkKey != "f12" {
		t.Errorf("push_to_talk_key = %q", cfg.Dictation.PushToTalkKey)
	}
	if cfg.Dictation.EscapeKey != "esc" {
		t.Errorf("escape_key should be untouched, got %q", cfg.Dictation.EscapeKey)
	}
	if cfg.Transcription.Provider != "groq" || cfg.Transcription.Language != "" {
		t.Errorf("transcription = %+v", cfg.Transcription)
	}
	if !reflect.DeepEqual(cfg.Injection.Backends, []string{"wtype"}) {
		t.Errorf("backends = %v", cfg.Injection.Backends)
	}
	if cfg.Dictation.FastDelete {
		t.Error("zero-valued overrides must not flip booleans")
	}
	if cfg.Transcription.APIKey != "test-api-key" {
		t.Errorf("api key = %q", cfg.Transcription.APIKey)
	}
}

func TestClone(t *testing.T) {
	cfg := createTestConfig()
	c := cfg.Clone()
	c.Injection.Backends[0] = "none"
	c.Hotkey.Devices[0] = "/dev/null"
	c.Dictation.DeleteKeywords.Words[0] = "x"
	if cfg.Injection.Backends[0] != "ydotool" || cfg.Hotkey.Devices[0] != "/dev/input/event3" || cfg.Dictation.DeleteKeywords.Words[0] != "delete" {
		t.Error("Clone() shares slices with the original")
	}
}

func TestManagerReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "[transcription]\napi_key = \"k\"\n")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	var reloaded []*Config
	m.OnReload(func(c *Config) { reloaded = append(reloaded, c) })

	writeFile(t, dir, "[transcription]\napi_key = \"k\"\n[dictation]\npush_to_talk_key = \"f8\"\n")
	m.reload()
	if len(reloaded) != 1 || reloaded[0].Dictation.PushToTalkKey != "f8" {
		t.Fatalf("reloaded = %v", reloaded)
	}
	if m.GetConfig().Dictation.PushToTalkKey != "f8" {
		t.Error("GetConfig() should return the reloaded config")
	}

	// unchanged content does not fire again
	m.reload()
	if len(reloaded) != 1 {
		t.Errorf("reload without changes fired %d callbacks", len(reloaded))
	}

	// invalid edits keep the previous config
	writeFile(t, dir, "[transcription]\napi_key = \"k\"\n[dictation]\npush_to_talk_key = \"f8\"\nescape_key = \"f8\"\n")
	m.reload()
	if len(reloaded) != 1 || m.GetConfig().Dictation.EscapeKey != "esc" {
		t.Errorf("invalid config was applied: %+v", m.GetConfig().Dictation)
	}
}

func TestManagerDefaultsWithoutFile(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if m.GetConfig().Dictation.PushToTalkKey != "f9" {
		t.Error("manager should start from defaults")
	}
}

func TestManagerWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "[transcription]\napi_key = \"k\"\n")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	got := make(chan *Config, 4)
	m.OnReload(func(c *Config) { got <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	next := m.GetConfig()
	next.Dictation.RecordingIndicator = "[rec]"
	if err := next.Save(path); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-got:
		if c.Dictation.RecordingIndicator != "[rec]" {
			t.Errorf("indicator = %q", c.Dictation.RecordingIndicator)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}
}

func TestManagerKeepsOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "[transcription]\napi_key = \"k\"\n")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetOverrides(Overrides{PushToTalkKey: "f7"}); err != nil {
		t.Fatalf("SetOverrides() error = %v", err)
	}
	if m.GetConfig().Dictation.PushToTalkKey != "f7" {
		t.Fatal("override not applied")
	}

	writeFile(t, dir, "[transcription]\napi_key = \"k\"\n[dictation]\nrecording_indicator = \"*\"\n")
	m.reload()
	got := m.GetConfig()
	if got.Dictation.PushToTalkKey != "f7" || got.Dictation.RecordingIndicator != "*" {
		t.Errorf("after reload: %+v", got.Dictation)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	if err := LoadEnv(cfgPath); err != nil {
		t.Fatalf("LoadEnv() without a file error = %v", err)
	}

	t.Setenv("GROQ_API_KEY", "placeholder")
	os.Unsetenv("GROQ_API_KEY")
	t.Setenv("CODESPEAK_TEST_KEEP", "from shell")
	env := "GROQ_API_KEY=gsk_from_file\nCODESPEAK_TEST_KEEP=from file\n"
	if err := os.WriteFile(filepath.Join(dir, EnvFile), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnv(cfgPath); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("GROQ_API_KEY"); got != "gsk_from_file" {
		t.Errorf("GROQ_API_KEY = %q", got)
	}
	if got := os.Getenv("CODESPEAK_TEST_KEEP"); got != "from shell" {
		t.Errorf("existing variable overwritten: %q", got)
	}

	cfg := DefaultConfig()
	cfg.Transcription.Provider = "groq"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with key from .env error = %v", err)
	}
}

func TestLoadEnvUnreadable(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, EnvFile), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnv(filepath.Join(dir, "config.toml")); err == nil {
		t.Error("LoadEnv() should fail when the file cannot be read")
	}
}
