package hstore

import (
	"strings"
	"unicode/utf8"
)

var escaper = strings.NewReplacer(`"`, `\"`, `\`, `\\`)

// Escape returns s with a backslash inserted before every double quote and
// backslash.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape returns s with every backslash escape sequence replaced by the
// escaped character.  Any character may follow a backslash.  A backslash at
// the end of s has nothing to escape and is kept.
func Unescape(s string) string {
	i := strings.IndexByte(s, '\\')
	if i < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i >= 0 && i+1 < len(s) {
		b.WriteString(s[:i])
		// Copy the whole escaped character, which may be multi-byte.
		_, n := utf8.DecodeRuneInString(s[i+1:])
		b.WriteString(s[i+1 : i+1+n])
		s = s[i+1+n:]
		i = strings.IndexByte(s, '\\')
	}
	b.WriteString(s)
	return b.String()
}
