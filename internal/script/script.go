// Package script classifies text by writing-system family. The service
// only needs to tell Hangul apart from everything else to pick a
// translation direction.
package script

// Label is a coarse writing-system classification.
type Label string

const (
	Hangul Label = "hangul"
	Other  Label = "other"
)

// Classify returns Hangul if any code point of text falls in the Hangul
// Jamo, Hangul Compatibility Jamo or Hangul Syllables blocks, and Other
// otherwise (including for the empty string). Pure function, no locale
// dependency.
func Classify(text string) Label {
	for _, r := range text {
		if isHangul(r) {
			return Hangul
		}
	}
	return Other
}

func isHangul(r rune) bool {
	return (r >= 0x1100 && r <= 0x11FF) || // Hangul Jamo
		(r >= 0x3130 && r <= 0x318F) || // Hangul Compatibility Jamo
		(r >= 0xAC00 && r <= 0xD7A3) // Hangul Syllables
}

// Flip returns the opposite label; the translation target is always the
// other side of the pair.
func (l Label) Flip() Label {
	if l == Hangul {
		return Other
	}
	return Hangul
}

// LanguageName maps a label to the language name used in prompts.
func (l Label) LanguageName() string {
	if l == Hangul {
		return "Korean"
	}
	return "English"
}
