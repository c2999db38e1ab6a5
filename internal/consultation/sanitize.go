package consultation

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageRunes is the longest user message kept after sanitizing.
const MaxMessageRunes = 2000

// SanitizeText trims text, cuts it to MaxMessageRunes and drops ASCII control
// characters other than tab, newline and carriage return.
func SanitizeText(text string) string {
	text = strings.TrimSpace(strings.ToValidUTF8(text, ""))
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		text = string([]rune(text)[:MaxMessageRunes])
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, text)
}
