// Package identity maps provider sessions onto directory usernames.
package identity

import (
	"strings"

	"github.com/fastygo/taskboard/domain"
)

// FallbackPrefix is prepended to the user id when no better username exists.
const FallbackPrefix = "user_"

const fallbackIDLength = 8

// ResolveUsername derives the canonical username for a session. Existing
// profiles are keyed by this value, so the order of the rules is fixed:
// explicit username, email local part, full name, short name, id fallback.
func ResolveUsername(session domain.Session) string {
	user := session.User

	if user.Metadata.Username != "" {
		return user.Metadata.Username
	}

	if user.Email != "" {
		if local, _, _ := strings.Cut(user.Email, "@"); local != "" {
			return local
		}
	}

	if user.Metadata.FullName != "" {
		return slug(user.Metadata.FullName)
	}
	if user.Metadata.Name != "" {
		return slug(user.Metadata.Name)
	}

	id := user.ID
	if len(id) > fallbackIDLength {
		id = id[:fallbackIDLength]
	}
	return FallbackPrefix + id
}

// slug lower-cases s and replaces every whitespace run with an underscore.
// Leading and trailing runs are kept as a single underscore.
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range strings.ToLower(s) {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0xA0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}
