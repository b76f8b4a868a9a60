// Package skillid canonicalizes skill identifiers (plain names, UUIDs, ESCO/O*NET URIs)
// into stable keys and derives human-readable labels from them.
package skillid

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	uuidShape   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hex32       = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	whitespace  = regexp.MustCompile(`\s+`)
	separators  = regexp.MustCompile(`[_-]+`)
	schemeShape = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
)

// NormalizeKey returns the canonical form of a raw skill identifier.
//
// Structurally recognised UUIDs (hyphenated, 32-hex, or space-grouped) are rewritten
// to lowercase 8-4-4-4-12 form. Anything else is returned trimmed with its case intact,
// so plain names such as "Data Analysis" keep their spelling.
func NormalizeKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	compact := stripUUIDNoise(trimmed)
	if hex32.MatchString(compact) {
		if id, err := uuid.Parse(compact); err == nil {
			return id.String()
		}
	}

	hyphenated := whitespace.ReplaceAllString(trimmed, "-")
	if uuidShape.MatchString(hyphenated) {
		return strings.ToLower(hyphenated)
	}

	return trimmed
}

// LooksLikeUUID reports whether raw is a UUID in any of the renderings seen upstream:
// standard hyphenated, a bare 32-hex blob, or 8-4-4-4-12 groups separated by spaces.
func LooksLikeUUID(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	if hex32.MatchString(trimmed) {
		return true
	}
	return uuidShape.MatchString(whitespace.ReplaceAllString(trimmed, "-"))
}

// LooksLikeURL reports whether raw carries a scheme://authority prefix.
func LooksLikeURL(raw string) bool {
	return schemeShape.MatchString(strings.TrimSpace(raw))
}

// IsIdentifier reports whether raw is a structural identifier rather than a display name.
func IsIdentifier(raw string) bool {
	return LooksLikeURL(raw) || LooksLikeUUID(raw)
}

// IsResolvedLabel reports whether label can be shown to a user as-is.
func IsResolvedLabel(label string) bool {
	return strings.TrimSpace(label) != ""
}

// FormatLabel derives a display label for a skill.
//
// A non-empty name that is not itself an identifier is returned verbatim. Otherwise the
// tail segment of the name (or key) is decoded and its separators turned into spaces.
// An empty result means the skill is unresolved and needs a follow-up resolve call.
func FormatLabel(name, key string) string {
	name = strings.TrimSpace(name)
	if name != "" && !IsIdentifier(name) {
		return name
	}

	fallback := name
	if fallback == "" {
		fallback = strings.TrimSpace(key)
	}
	if fallback == "" {
		return ""
	}

	var tail string
	if LooksLikeURL(fallback) {
		tail = urlTail(fallback)
	} else {
		tail = lastSegment(lastSegment(fallback, "/"), ":")
	}

	if decoded, err := url.PathUnescape(tail); err == nil {
		tail = decoded
	}
	tail = separators.ReplaceAllString(tail, " ")
	tail = strings.TrimSpace(whitespace.ReplaceAllString(tail, " "))

	if LooksLikeUUID(tail) {
		return ""
	}
	return tail
}

// urlTail returns the last non-empty path segment of a URL, or its host when the path is empty.
func urlTail(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return lastSegment(raw, "/")
	}
	segments := strings.Split(u.EscapedPath(), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return u.Hostname()
}

func lastSegment(s, sep string) string {
	if idx := strings.LastIndex(s, sep); idx >= 0 {
		return s[idx+len(sep):]
	}
	return s
}

func stripUUIDNoise(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
