// Package langdetect guesses the language of selected text.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Auto is returned when the language cannot be determined.
const Auto = "auto"

var languages = []lingua.Language{
	lingua.English,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.Vietnamese,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Russian,
}

var detector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithMinimumRelativeDistance(0.1).
		Build()
})

// Detect returns the ISO 639-1 code and English name of the language of
// text, or Auto when it is unknown.
func Detect(text string) (code, name string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Auto, "Auto"
	}

	lang, ok := detector().DetectLanguageOf(text)
	if !ok {
		return Auto, "Auto"
	}
	return strings.ToLower(lang.IsoCode639_1().String()), lang.String()
}
