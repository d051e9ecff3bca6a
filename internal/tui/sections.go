package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/codespeak-dev/codespeak/internal/hotkey"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/models"
	"github.com/codespeak-dev/codespeak/internal/notify"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

func (w *wizard) editKeys() error {
	ptt, err := w.readKey("Push-to-talk key", "Starts and stops recording.", w.cfg.Dictation.PushToTalkKey)
	if err != nil {
		return err
	}
	esc, err := w.readKey("Cancel key", "Discards the recording in progress.", w.cfg.Dictation.EscapeKey)
	if err != nil {
		return err
	}
	if keys.Equal(ptt, esc) {
		fmt.Println(StyleError.Render("The cancel key must differ from the push-to-talk key."))
		return w.editKeys()
	}
	w.cfg.Dictation.PushToTalkKey = ptt
	w.cfg.Dictation.EscapeKey = esc
	return nil
}

// readKey captures a key press when possible and otherwise asks for the
// key's name.
func (w *wizard) readKey(title, desc, current string) (string, error) {
	if w.capture != nil {
		useCapture := true
		err := runForm(
			huh.NewConfirm().
				Title(title).
				Description(fmt.Sprintf("%s Currently %s.", desc, keys.Canonical(current))).
				Affirmative("Press it").
				Negative("Type its name").
				Value(&useCapture),
		)
		if err != nil {
			return "", err
		}
		if useCapture {
			fmt.Println(StyleMuted.Render(fmt.Sprintf("Press the key now (waiting %s)...", captureTimeout)))
			ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
			key, err := w.capture(ctx)
			cancel()
			if err == nil {
				fmt.Println(StyleSuccess.Render("Got " + key))
				return key, nil
			}
			fmt.Println(StyleWarning.Render("Could not read the keyboard: " + err.Error()))
		}
	}

	name := current
	err := runForm(
		huh.NewInput().
			Title(title).
			Description(desc + " A name (f9, space, esc), one character, or vk_<code>.").
			Value(&name).
			Validate(validateKey),
	)
	if err != nil {
		return "", err
	}
	return keys.Canonical(name), nil
}

func (w *wizard) editDictation() error {
	d := &w.cfg.Dictation
	indicator := d.RecordingIndicator
	keywords := formatKeywords(d.DeleteKeywords)
	interval := d.KeyInterval.String()
	settle := d.SettleDelay.String()
	strip := d.StripWhitespace
	fast := d.FastDelete

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recording indicator").
				Description("Typed while recording and removed afterwards. Leave empty for none.").
				Value(&indicator),
			huh.NewInput().
				Title("Delete keywords").
				Description(`Comma separated phrases that delete the last input, or "off".`).
				Value(&keywords),
			huh.NewConfirm().
				Title("Trim whitespace around transcripts?").
				Value(&strip),
			huh.NewConfirm().
				Title("Delete in one go?").
				Description("Send all backspaces at once instead of one at a time.").
				Value(&fast),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Key interval").
				Description("Pause between typed keys, e.g. 10ms.").
				Value(&interval).
				Validate(validateDuration),
			huh.NewInput().
				Title("Settle delay").
				Description("Pause around indicator and recorder changes, e.g. 200ms.").
				Value(&settle).
				Validate(validateDuration),
		),
	).WithTheme(getTheme()).Run()
	if err != nil {
		return err
	}

	d.RecordingIndicator = indicator
	d.DeleteKeywords = parseKeywords(keywords)
	d.StripWhitespace = strip
	d.FastDelete = fast
	d.KeyInterval, _ = parseDuration(interval)
	d.SettleDelay, _ = parseDuration(settle)
	return nil
}

func (w *wizard) editTranscription() error {
	t := &w.cfg.Transcription
	provider := t.Provider
	if err := runForm(
		huh.NewSelect[string]().
			Title("Transcription provider").
			Options(providerOptions()...).
			Value(&provider),
	); err != nil {
		return err
	}

	if provider != t.Provider {
		t.Model = ""
	}
	t.Provider = provider

	if provider == transcriber.ProviderWhisperCpp {
		path, err := w.chooseModel(t.ModelPath)
		if err != nil {
			return err
		}
		t.ModelPath = path
	} else {
		key := t.APIKey
		env := transcriber.APIKeyEnv(provider)
		desc := fmt.Sprintf("Leave empty to use $%s.", env)
		if os.Getenv(env) != "" {
			desc = fmt.Sprintf("$%s is set; leave empty to use it.", env)
		}
		err := runForm(
			huh.NewInput().
				Title("API key").
				Description(desc).
				EchoMode(huh.EchoModePassword).
				Value(&key),
		)
		if err != nil {
			return err
		}
		t.APIKey = key
	}

	lang := t.Language
	if err := runForm(
		huh.NewSelect[string]().
			Title("Spoken language").
			Options(languageOptions()...).
			Height(12).
			Value(&lang),
	); err != nil {
		return err
	}
	t.Language = lang
	return nil
}

const customModel = "custom"

// chooseModel offers the catalog models, downloading the one picked when it
// is not installed yet, or a path to any other ggml file.
func (w *wizard) chooseModel(current string) (string, error) {
	store, err := models.DefaultStore()
	if err != nil {
		return "", err
	}

	choice := customModel
	opts := make([]huh.Option[string], 0, len(models.All())+1)
	for _, e := range store.List() {
		label := fmt.Sprintf("%s (download %s)", e.Name, e.SizeLabel())
		if e.Installed {
			label = e.Name + " (installed)"
			if e.Path == current {
				choice = e.ID
			}
		}
		opts = append(opts, huh.NewOption(label, e.ID))
	}
	opts = append(opts, huh.NewOption("Other model file...", customModel))

	if err := runForm(
		huh.NewSelect[string]().
			Title("whisper.cpp model").
			Description("Models are stored in " + store.Dir).
			Options(opts...).
			Height(12).
			Value(&choice),
	); err != nil {
		return "", err
	}

	if choice != customModel {
		if path, ok := store.Installed(choice); ok {
			return path, nil
		}
		fmt.Println(StyleMuted.Render("Downloading " + choice + "..."))
		path, err := store.Download(context.Background(), choice, func(done, total int64) {
			fmt.Printf("\r  %3d%%", done*100/max(total, 1))
		})
		fmt.Println()
		if err != nil {
			fmt.Println(StyleError.Render("Download failed: " + err.Error()))
			return w.chooseModel(current)
		}
		return path, nil
	}

	path := current
	err = runForm(
		huh.NewInput().
			Title("whisper.cpp model file").
			Description("Path to a ggml model, e.g. ~/models/ggml-base.en.bin").
			Value(&path).
			Validate(func(s string) error {
				if _, err := os.Stat(s); err != nil {
					return fmt.Errorf("cannot read model: %w", err)
				}
				return nil
			}),
	)
	return path, err
}

func (w *wizard) editInjection() error {
	backends := w.cfg.Injection.Backends
	err := runForm(
		huh.NewMultiSelect[string]().
			Title("Typing backends").
			Description("Tried in order; the first one that is installed is used.").
			Options(backendOptions(backends)...).
			Value(&backends).
			Validate(func(s []string) error {
				if len(s) == 0 {
					return fmt.Errorf("select at least one backend")
				}
				return nil
			}),
	)
	if err != nil {
		return err
	}
	w.cfg.Injection.Backends = backends
	return nil
}

func (w *wizard) editHotkey() error {
	source := w.cfg.Hotkey.Source
	err := runForm(
		huh.NewSelect[string]().
			Title("Hotkey source").
			Options(
				huh.NewOption("Keyboard devices (evdev, needs the input group)", hotkey.SourceEvdev),
				huh.NewOption("Compositor keybinds calling `codespeak press`", hotkey.SourceSocket),
			).
			Value(&source),
	)
	if err != nil {
		return err
	}
	w.cfg.Hotkey.Source = source
	return nil
}

func (w *wizard) editNotifications() error {
	n := &w.cfg.Notifications
	enabled := n.Enabled
	kind := n.Type
	if kind == "" {
		kind = notify.TypeDesktop
	}

	err := runForm(
		huh.NewConfirm().
			Title("Show notifications?").
			Description("Recording started/stopped, deletions and errors.").
			Value(&enabled),
	)
	if err != nil {
		return err
	}
	n.Enabled = enabled
	if !enabled {
		return nil
	}

	err = runForm(
		huh.NewSelect[string]().
			Title("Notification type").
			Options(
				huh.NewOption("Desktop notifications (notify-send)", notify.TypeDesktop),
				huh.NewOption("Log to console only", notify.TypeLog),
				huh.NewOption("None (silent)", notify.TypeNone),
			).
			Value(&kind),
	)
	if err != nil {
		return err
	}
	n.Type = kind
	return nil
}
