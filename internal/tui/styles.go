package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	ColorPrimary   = lipgloss.Color("#E0663F")
	ColorSecondary = lipgloss.Color("#3FB9E0")
	ColorSuccess   = lipgloss.Color("#4CAF50")
	ColorError     = lipgloss.Color("#E53935")
	ColorWarning   = lipgloss.Color("#FBC02D")
	ColorText      = lipgloss.Color("#ECEFF1")
	ColorMuted     = lipgloss.Color("#90A4AE")
	ColorSubtle    = lipgloss.Color("#607D8B")
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			Width(16)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)

	StyleKey = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(1, 2)
)

const logoASCII = `
              _                            _
  ___ ___  __| | ___  ___ _ __   ___  __ _| | __
 / __/ _ \/ _` + "`" + ` |/ _ \/ __| '_ \ / _ \/ _` + "`" + ` | |/ /
| (_| (_) | (_| |  __/\__ \ |_) |  __/ (_| |   <
 \___\___/ \__,_|\___||___/ .__/ \___|\__,_|_|\_\
                          |_|`

func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}

// KeyValue renders one "label value" line of a summary.
func KeyValue(label, value string) string {
	return "  " + StyleLabel.Render(label) + " " + value
}

func clearScreen() {
	termenv.NewOutput(os.Stdout).ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}

// runForm shows a single-group form.
func runForm(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(getTheme()).Run()
}
