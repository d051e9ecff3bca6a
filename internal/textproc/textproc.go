// Package textproc normalizes transcripts and recognizes spoken commands.
package textproc

import "strings"

// Config for transcript classification
type Config struct {
	StripWhitespace bool
	DeleteEnabled   bool
	DeleteKeywords  []string
}

// Classifier decides whether a transcript is ordinary text or a delete command
type Classifier struct {
	strip    bool
	enabled  bool
	keywords map[string]struct{}
}

func NewClassifier(config Config) *Classifier {
	c := &Classifier{
		strip:    config.StripWhitespace,
		enabled:  config.DeleteEnabled,
		keywords: make(map[string]struct{}, len(config.DeleteKeywords)),
	}
	for _, kw := range config.DeleteKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		c.keywords[kw] = struct{}{}
	}
	return c
}

// Normalize trims surrounding whitespace when stripping is enabled.
func (c *Classifier) Normalize(raw string) string {
	if !c.strip {
		return raw
	}
	return strings.TrimSpace(raw)
}

// IsDeleteCommand reports whether text is exactly one of the delete keywords,
// ignoring case, surrounding whitespace and a single trailing period.
func (c *Classifier) IsDeleteCommand(text string) bool {
	if !c.enabled || len(c.keywords) == 0 {
		return false
	}
	normalized := strings.TrimSpace(strings.ToLower(text))
	normalized = strings.TrimSuffix(normalized, ".")
	_, ok := c.keywords[normalized]
	return ok
}
