package gallery

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsValidSlug reports whether s is a URL-safe lowercase country identifier.
func IsValidSlug(s string) bool {
	return len(s) <= 64 && slugRegex.MatchString(s)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with '_'.
// An empty name becomes "file".
func SanitizeFilename(name string) string {
	if name == "" {
		return "file"
	}
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// IsValidStoredName validates a single stored file name.
// It checks that the name:
//   - is not empty, "." or ".."
//   - does not start with "." (temp and hidden files)
//   - does not contain path separators
//   - is valid UTF-8 without control characters
func IsValidStoredName(name string) bool {
	if name == "" || name[0] == '.' {
		return false
	}

	if strings.ContainsAny(name, `/\`) {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || (unicode.IsSpace(r) && r != ' ') {
			return false
		}
	}

	return true
}

// FileURL returns the API path that serves a stored file.
func FileURL(country, filename string) string {
	return "/api/files/" + country + "/" + url.PathEscape(filename)
}

// OriginalNameFromStored strips the "<millis>-<random>-" prefix from a stored name.
// Names that do not carry the prefix are returned unchanged.
func OriginalNameFromStored(stored string) string {
	parts := strings.SplitN(stored, "-", 3)
	if len(parts) != 3 || parts[2] == "" {
		return stored
	}
	for _, r := range parts[0] {
		if r < '0' || r > '9' {
			return stored
		}
	}
	return parts[2]
}

// decodeCandidates returns the names to try for a possibly percent-encoded
// file name: the decoded form first, then the raw form if it differs.
func decodeCandidates(raw string) []string {
	decoded, err := url.PathUnescape(raw)
	if err != nil || decoded == raw {
		return []string{raw}
	}
	return []string{decoded, raw}
}
