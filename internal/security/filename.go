// Package security holds helpers for handling untrusted names that end up
// in filesystem paths.
package security

import "strings"

// maxFilenameLen caps generated name components so report paths stay well
// under filesystem limits.
const maxFilenameLen = 128

func safeFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}

// SanitizeFilename makes a safe filename component from an arbitrary string.
// Report files are named after targets that come from user decks and query
// parameters, so any rune outside the ASCII letter/digit/dot/underscore/dash
// set becomes an underscore, runs of replacements collapse to one, and the
// result is length-capped. Strings with nothing salvageable come back as
// "unknown".
func SanitizeFilename(s string) string {
	var b strings.Builder
	pendingGap := false
	for _, r := range s {
		if b.Len() >= maxFilenameLen {
			break
		}
		if !safeFilenameRune(r) {
			pendingGap = true
			continue
		}
		if pendingGap && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingGap = false
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
