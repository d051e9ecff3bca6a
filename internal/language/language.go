// Package language lists the spoken languages the transcription providers
// accept, keyed by ISO 639-1 code.
package language

import (
	"sort"
	"strings"
)

type Language struct {
	Code       string
	Name       string
	NativeName string
}

// Auto lets the provider detect the language. Its code is empty.
var Auto = Language{Name: "Auto-detect"}

var whisper = []Language{
	{Code: "af", Name: "Afrikaans", NativeName: "Afrikaans"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "hy", Name: "Armenian", NativeName: "Հայերեն"},
	{Code: "az", Name: "Azerbaijani", NativeName: "Azərbaycan"},
	{Code: "be", Name: "Belarusian", NativeName: "Беларуская"},
	{Code: "bs", Name: "Bosnian", NativeName: "Bosanski"},
	{Code: "bg", Name: "Bulgarian", NativeName: "Български"},
	{Code: "ca", Name: "Catalan", NativeName: "Català"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "hr", Name: "Croatian", NativeName: "Hrvatski"},
	{Code: "cs", Name: "Czech", NativeName: "Čeština"},
	{Code: "da", Name: "Danish", NativeName: "Dansk"},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands"},
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "et", Name: "Estonian", NativeName: "Eesti"},
	{Code: "fi", Name: "Finnish", NativeName: "Suomi"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "gl", Name: "Galician", NativeName: "Galego"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "el", Name: "Greek", NativeName: "Ελληνικά"},
	{Code: "he", Name: "Hebrew", NativeName: "עברית"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "hu", Name: "Hungarian", NativeName: "Magyar"},
	{Code: "is", Name: "Icelandic", NativeName: "Íslenska"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia"},
	{Code: "it", Name: "Italian", NativeName: "Italiano"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "kk", Name: "Kazakh", NativeName: "Қазақ"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "lv", Name: "Latvian", NativeName: "Latviešu"},
	{Code: "lt", Name: "Lithuanian", NativeName: "Lietuvių"},
	{Code: "mk", Name: "Macedonian", NativeName: "Македонски"},
	{Code: "ms", Name: "Malay", NativeName: "Bahasa Melayu"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी"},
	{Code: "mi", Name: "Maori", NativeName: "Māori"},
	{Code: "ne", Name: "Nepali", NativeName: "नेपाली"},
	{Code: "no", Name: "Norwegian", NativeName: "Norsk"},
	{Code: "fa", Name: "Persian", NativeName: "فارسی"},
	{Code: "pl", Name: "Polish", NativeName: "Polski"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "ro", Name: "Romanian", NativeName: "Română"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "sr", Name: "Serbian", NativeName: "Српски"},
	{Code: "sk", Name: "Slovak", NativeName: "Slovenčina"},
	{Code: "sl", Name: "Slovenian", NativeName: "Slovenščina"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "sw", Name: "Swahili", NativeName: "Kiswahili"},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska"},
	{Code: "tl", Name: "Tagalog", NativeName: "Tagalog"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "th", Name: "Thai", NativeName: "ไทย"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt"},
	{Code: "cy", Name: "Welsh", NativeName: "Cymraeg"},
}


var byCode = func() map[string]Language {
	m := make(map[string]Language, len(whisper))
	for _, l := range whisper {
		m[l.Code] = l
	}
	return m
}()

// Normalize lowercases code and maps the aliases for auto-detection onto
// the empty code.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "auto" {
		return ""
	}
	return code
}

// Lookup resolves a code after normalization. The empty code is Auto.
func Lookup(code string) (Language, bool) {
	code = Normalize(code)
	if code == "" {
		return Auto, true
	}
	l, ok := byCode[code]
	return l, ok
}

func Valid(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// All returns the known languages sorted by English name, without Auto.
func All() []Language {
	out := make([]Language, len(whisper))
	copy(out, whisper)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Label is the display form used by pickers, e.g. "German (Deutsch)".
func (l Language) Label() string {
	if l.Code == "" {
		return l.Name
	}
	if l.NativeName == "" || l.NativeName == l.Name {
		return l.Name
	}
	return l.Name + " (" + l.NativeName + ")"
}
