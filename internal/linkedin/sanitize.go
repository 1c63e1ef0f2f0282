package linkedin

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LinkedIn content limits
const maxCommentaryLength = 3000

// box drawing and invisible characters the share API mangles
var linkedinReplacer = strings.NewReplacer(
	"━", "-",
	"─", "-",
	"═", "=",
	"│", "|",
	"║", "|",
	"┌", "+",
	"┐", "+",
	"└", "+",
	"┘", "+",
	"├", "+",
	"┤", "+",
	"┬", "+",
	"┴", "+",
	"┼", "+",
	"\u00A0", " ", // Non-breaking space
	"\u2003", " ", // Em space
	"\u2002", " ", // En space
	"\u2009", " ", // Thin space
	"\u200B", "",  // Zero-width space
	"\u200C", "",  // Zero-width non-joiner
	"\uFEFF", "",  // BOM
	"\r\n", "\n",
	"\r", "\n",
)

// sanitizeForLinkedIn cleans content so the share API accepts it. Emoji
// and zero-width joiners inside emoji sequences are kept.
func sanitizeForLinkedIn(content string) string {
	content = linkedinReplacer.Replace(content)

	var result strings.Builder
	result.Grow(len(content))
	for _, r := range content {
		if r == '\n' || r == '\t' || r == '\u200D' || unicode.IsPrint(r) {
			result.WriteRune(r)
		}
	}
	content = result.String()

	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(content)
}

// PrepareCommentary sanitizes text and caps it at the commentary limit
func PrepareCommentary(text string) string {
	content := sanitizeForLinkedIn(text)
	if utf8.RuneCountInString(content) > maxCommentaryLength {
		runes := []rune(content)
		content = string(runes[:maxCommentaryLength-3]) + "..."
	}
	return content
}
