// Package slug derives the URL- and filename-safe identifier that links a
// company's published prompt to its rendered demo page.
package slug

import (
	"errors"
	"regexp"
	"strings"
)

// PromptPrefix is prepended to a slug to form the published prompt name.
const PromptPrefix = "teleperson-demo-"

var (
	// ErrEmpty is returned when a slug is empty.
	ErrEmpty = errors.New("slug must not be empty")

	// ErrFormat is returned when a slug contains characters outside [a-z0-9-].
	ErrFormat = errors.New("slug must contain only lowercase alphanumeric characters and hyphens, and must not start or end with a hyphen")

	nonWord    = regexp.MustCompile(`[^a-z0-9\s\p{Z}_-]`)
	separators = regexp.MustCompile(`[\s\p{Z}_]+`)
	hyphens    = regexp.MustCompile(`-+`)
	unsafeID   = regexp.MustCompile(`(?i)[^a-z0-9-]`)

	pattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
)

// Slugify lower-cases name, strips punctuation, turns whitespace and
// underscore runs into single hyphens and trims the result. It is idempotent:
// Slugify(Slugify(x)) == Slugify(x).
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonWord.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "- \t\r\n")
}

// Sanitize reduces an externally supplied identifier to [a-z0-9-] so it can
// be used as a storage key without escaping its directory.
func Sanitize(id string) string {
	return strings.ToLower(unsafeID.ReplaceAllString(id, ""))
}

// PromptName returns the prompt-store name for slug.
func PromptName(s string) string {
	return PromptPrefix + s
}

// Validate checks that s is a well-formed slug.
func Validate(s string) error {
	if s == "" {
		return ErrEmpty
	}
	if !pattern.MatchString(s) {
		return ErrFormat
	}
	return nil
}
