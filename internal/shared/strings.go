package shared

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanString trims and collapses inner whitespace.
func CleanString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName title-cases a person name after cleaning it. Casers are stateful,
// so one is built per call.
func NormalizeName(s string) string {
	return cases.Title(language.Indonesian).String(CleanString(s))
}

// NormalizeUsername lower-cases and trims a login name.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
