package textutil

import (
	"regexp"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

var whitespaceRegex = regexp.MustCompile(`[\s\x{00a0}]+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// CollapseWhitespace turns every run of whitespace (including no-break spaces)
// into a single space and trims both ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// PadEnd pads s with spaces on the right until it is width columns wide,
// strings that are already wider are returned untouched.
func PadEnd(s string, width int) string {
	return text.Pad(s, width, ' ')
}

// Truncate cuts s down to at most n characters.
func Truncate(s string, n int) string {
	return text.Trim(s, n)
}

// Column truncates and then pads, the result is always exactly width wide.
func Column(s string, width int) string {
	return PadEnd(Truncate(s, width), width)
}
