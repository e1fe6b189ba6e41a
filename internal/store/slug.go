package store

import (
	"strings"

	"github.com/google/uuid"
)

const maxSlugBase = 30

// GenerateSlug derives a share slug from a calendar name: lowercased,
// non-alphanumerics collapsed to single dashes, capped, plus a short
// random suffix so repeated names never collide.
func GenerateSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	base := strings.Join(parts, "-")
	if len(base) > maxSlugBase {
		base = strings.TrimRight(base[:maxSlugBase], "-")
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// SanitizeCustomSlug keeps only lowercase alphanumerics and dashes from a
// user-chosen slug.
func SanitizeCustomSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
