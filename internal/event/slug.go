package event

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugFallback is the slug for events with no usable name.
const SlugFallback = "evento-sem-nome"

// Slug derives the stable URL-safe identifier for an event name: the join
// key for favorites, deep links and related-event lookups. It is a pure
// function of the name: lower-case, NFD decomposition with combining
// marks removed, everything outside [a-z0-9 -] stripped, whitespace runs
// collapsed to single hyphens.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}

	s = strings.Join(strings.Fields(b.String()), "-")
	if s == "" {
		return SlugFallback
	}
	return s
}
