package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IDSeparator joins path segments inside a run identifier.
const IDSeparator = "_"

// TitleFromID turns a run identifier into a display title. Separators become
// spaces and every run of cased letters is title-cased on its own, so a
// letter after a digit or punctuation starts a new word ("v2.run" becomes
// "V2.Run").
func TitleFromID(id string) string {
	// Casers carry state and must not be shared across goroutines.
	caser := cases.Title(language.Und)
	src := strings.ReplaceAll(id, IDSeparator, " ")

	var b strings.Builder
	b.Grow(len(src))
	start := -1
	for i, r := range src {
		if isCased(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(src[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(src[start:]))
	}
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}
