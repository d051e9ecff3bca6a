// Package tui is the interactive setup for codespeak, built on huh forms.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/codespeak-dev/codespeak/internal/config"
	"github.com/codespeak-dev/codespeak/internal/keys"
	"github.com/codespeak-dev/codespeak/internal/transcriber"
)

type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// KeyCapture waits for the next key press and returns its canonical id.
type KeyCapture func(ctx context.Context) (string, error)

type Options struct {
	// Capture reads a key from the keyboard. When nil, or when it fails,
	// keys are typed by name instead.
	Capture KeyCapture
	// Fresh runs the guided first-time flow instead of the menu.
	Fresh bool
}

type Section string

const (
	SectionKeys          Section = "keys"
	SectionDictation     Section = "dictation"
	SectionTranscription Section = "transcription"
	SectionInjection     Section = "injection"
	SectionHotkey        Section = "hotkey"
	SectionNotifications Section = "notifications"
	SectionSaveExit      Section = "save_exit"
	SectionDiscardExit   Section = "discard_exit"
)

var menuSections = []Section{
	SectionKeys,
	SectionDictation,
	SectionTranscription,
	SectionInjection,
	SectionHotkey,
	SectionNotifications,
	SectionSaveExit,
	SectionDiscardExit,
}

const captureTimeout = 15 * time.Second

// Run edits a copy of cfg and returns it when the operator saves.
func Run(cfg *config.Config, opts Options) (*ConfigureResult, error) {
	cfg = cfg.Clone()
	w := &wizard{cfg: cfg, capture: opts.Capture}

	if opts.Fresh {
		return w.runFresh()
	}
	return w.runMenu()
}

type wizard struct {
	cfg     *config.Config
	capture KeyCapture
}

func (w *wizard) runFresh() (*ConfigureResult, error) {
	clearScreen()
	fmt.Println(Logo())
	fmt.Println(StyleMuted.Render("Let's set up push-to-talk dictation."))
	fmt.Println()

	steps := []func() error{
		w.editTranscription,
		w.editKeys,
		w.editInjection,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return &ConfigureResult{Cancelled: true}, nil
			}
			return nil, err
		}
	}
	return w.confirm()
}

func (w *wizard) runMenu() (*ConfigureResult, error) {
	for {
		clearScreen()
		fmt.Println(Logo())

		var selected Section
		options := make([]huh.Option[Section], len(menuSections))
		for i, s := range menuSections {
			options[i] = huh.NewOption(sectionLabel(w.cfg, s), s)
		}
		err := runForm(
			huh.NewSelect[Section]().
				Title("Configuration").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		var editErr error
		switch selected {
		case SectionSaveExit:
			res, err := w.confirm()
			if err != nil || !res.Cancelled {
				return res, err
			}
		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil
		case SectionKeys:
			editErr = w.editKeys()
		case SectionDictation:
			editErr = w.editDictation()
		case SectionTranscription:
			editErr = w.editTranscription()
		case SectionInjection:
			editErr = w.editInjection()
		case SectionHotkey:
			editErr = w.editHotkey()
		case SectionNotifications:
			editErr = w.editNotifications()
		}
		// esc inside a section returns to the menu
		if editErr != nil && !errors.Is(editErr, huh.ErrUserAborted) {
			return nil, editErr
		}
	}
}

func (w *wizard) confirm() (*ConfigureResult, error) {
	fmt.Println()
	fmt.Println(Summary(w.cfg))

	if err := w.cfg.Validate(); err != nil {
		fmt.Println(StyleWarning.Render("Warning: " + err.Error()))
		fmt.Println()
	}

	save := true
	err := runForm(
		huh.NewConfirm().
			Title("Save this configuration?").
			Affirmative("Save").
			Negative("Back").
			Value(&save),
	)
	if err != nil || !save {
		return &ConfigureResult{Cancelled: true}, nil
	}
	return &ConfigureResult{Config: w.cfg}, nil
}

// Summary renders the settings an operator cares about.
func Summary(cfg *config.Config) string {
	d := cfg.Dictation
	t := cfg.Transcription
	lines := []string{
		StyleHeader.Render("Configuration Summary"),
		KeyValue("Record key:", StyleKey.Render(keys.Canonical(d.PushToTalkKey))),
		KeyValue("Cancel key:", StyleKey.Render(keys.Canonical(d.EscapeKey))),
		KeyValue("Indicator:", formatIndicator(d.RecordingIndicator)),
		KeyValue("Delete words:", formatKeywords(d.DeleteKeywords)),
		KeyValue("Provider:", t.Provider),
	}
	switch t.Provider {
	case transcriber.ProviderWhisperCpp:
		lines = append(lines, KeyValue("Model file:", t.ModelPath))
	default:
		lines = append(lines, KeyValue("API key:", maskKey(t.APIKey)))
	}
	lines = append(lines,
		KeyValue("Language:", formatLanguage(t.Language)),
		KeyValue("Typing via:", strings.Join(cfg.Injection.Backends, " -> ")),
		KeyValue("Hotkeys from:", cfg.Hotkey.Source),
	)
	return StyleBox.Render(strings.Join(lines, "\n"))
}
