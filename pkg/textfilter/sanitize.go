package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Terminal escape sequences: CSI (colors, cursor movement) and OSC (titles, hyperlinks).
var (
	csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	oscPattern = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
)

// CleanText makes generated prose safe to draw: escape sequences and control
// characters are removed, line endings are unified, and the result is NFC-normalized.
// Newlines survive; tabs become single spaces.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = oscPattern.ReplaceAllString(text, "")
	text = csiPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		case r == unicode.ReplacementChar:
			return -1
		}
		return r
	}, text)

	return strings.TrimSpace(norm.NFC.String(text))
}

// CleanLine is CleanText for single-line values such as option labels: any
// internal line breaks and runs of whitespace collapse into one space.
func CleanLine(text string) string {
	return strings.Join(strings.Fields(CleanText(text)), " ")
}

// CleanLines applies CleanLine to every element and drops the ones left empty.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if cleaned := CleanLine(line); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
