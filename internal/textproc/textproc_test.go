package textproc

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	inputs := []string{"", "hello", "  hello world  ", "\thello\n", " \n ", "a b  c"}

	t.Run("strip enabled trims", func(t *testing.T) {
		c := NewClassifier(Config{StripWhitespace: true})
		for _, in := range inputs {
			if got := c.Normalize(in); got != strings.TrimSpace(in) {
				t.Errorf("Normalize(%q) = %q, want %q", in, got, strings.TrimSpace(in))
			}
		}
	})

	t.Run("strip disabled is identity", func(t *testing.T) {
		c := NewClassifier(Config{StripWhitespace: false})
		for _, in := range inputs {
			if got := c.Normalize(in); got != in {
				t.Errorf("Normalize(%q) = %q, want identity", in, got)
			}
		}
	})
}

func TestIsDeleteCommand(t *testing.T) {
	c := NewClassifier(Config{
		StripWhitespace: true,
		DeleteEnabled:   true,
		DeleteKeywords:  []string{"delete", "Delete Last", "scratch that"},
	})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact", "delete", true},
		{"capitalized with period", "Delete.", true},
		{"upper case", "DELETE", true},
		{"surrounding space", "  delete  ", true},
		{"multi word keyword", "delete last", true},
		{"multi word mixed case and period", "Scratch that.", true},
		{"exclamation does not match", "delete!", false},
		{"two periods only strips one", "delete..", false},
		{"prefix does not match", "delete this line", false},
		{"substring does not match", "undelete", false},
		{"ordinary text", "hello world", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDeleteCommand(tt.text); got != tt.want {
				t.Errorf("IsDeleteCommand(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsDeleteCommandDisabled(t *testing.T) {
	c := NewClassifier(Config{
		DeleteEnabled:  false,
		DeleteKeywords: []string{"delete"},
	})

	for _, text := range []string{"delete", "Delete.", "DELETE", "anything"} {
		if c.IsDeleteCommand(text) {
			t.Errorf("IsDeleteCommand(%q) = true with feature disabled", text)
		}
	}
}

func TestIsDeleteCommandIgnoresBlankKeywords(t *testing.T) {
	c := NewClassifier(Config{DeleteEnabled: true, DeleteKeywords: []string{"", "  "}})
	if c.IsDeleteCommand("") {
		t.Error("blank keywords must not match empty text")
	}
	if c.IsDeleteCommand(".") {
		t.Error("blank keywords must not match a lone period")
	}
}
