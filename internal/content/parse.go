package content

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spacesedan/postsmith/internal/models"
)

const (
	titleLabel      = "title"
	emphasisMarkers = "*#_ "
)

// ParsePost splits a model response into title and body.
//
// The title is the first non-blank line once emphasis markers and a
// leading "Title:" label are removed; a line holding only the label is
// skipped. The body is everything after that line. When no line qualifies
// the title falls back to the capitalized subject and the body is the whole
// response; when the title is the only line the body is also the whole
// response.
func ParsePost(raw, subject string) models.GeneratedPost {
	full := strings.TrimSpace(raw)
	lines := strings.Split(strings.ReplaceAll(full, "\r\n", "\n"), "\n")

	for i, line := range lines {
		title := cleanTitle(line)
		if title == "" {
			continue
		}
		if i == len(lines)-1 {
			return models.GeneratedPost{Title: title, Body: full}
		}
		body := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		return models.GeneratedPost{Title: title, Body: body}
	}

	return models.GeneratedPost{Title: Capitalize(subject), Body: full}
}

func cleanTitle(line string) string {
	s := strings.TrimLeft(strings.TrimSpace(line), emphasisMarkers)
	s = stripLabel(s)
	s = strings.TrimRight(s, emphasisMarkers)
	return strings.TrimSpace(strings.Trim(s, `"`))
}

// stripLabel drops a leading "Title:" label, including markers between the
// word and the colon as in "**Title**:".
func stripLabel(s string) string {
	if len(s) < len(titleLabel) || !strings.EqualFold(s[:len(titleLabel)], titleLabel) {
		return s
	}
	rest := strings.TrimLeft(s[len(titleLabel):], emphasisMarkers)
	if !strings.HasPrefix(rest, ":") {
		return s
	}
	return strings.TrimLeft(rest[1:], emphasisMarkers)
}

// Capitalize upper-cases the first rune and leaves the rest alone, so
// acronyms such as "AI" survive.
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
