package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a person's name and collapses its whitespace so
// that names typed by hand compare equal to the portal's.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSpace(name)
	return whitespaceRegex.ReplaceAllString(name, " ")
}
