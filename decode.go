package hstore

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Load decodes hstore text.  The whole text must consist of consecutive
// pairs; otherwise Load returns a *ParseError with the offset of the first
// character that could not be consumed and no map.  When a key repeats, the
// last value wins.  Empty text decodes to an empty, non-nil Hstore.
func Load(text string) (Hstore, error) {
	pairs, err := LoadPairs(text)
	if err != nil {
		return nil, err
	}

	h := make(Hstore, len(pairs))
	for _, p := range pairs {
		h[p.Key] = p.Value
	}
	return h, nil
}

// LoadPairs decodes hstore text like Load, but returns every pair in the
// order it appears in the text, including repeated keys.
func LoadPairs(text string) ([]Pair, error) {
	d := decoder{text: text}
	var pairs []Pair
	for d.pos < len(d.text) {
		p, end, err := d.readPair(d.pos)
		if err != nil {
			return nil, d.parseError(err)
		}
		pairs = append(pairs, p)
		d.pos = end
	}
	return pairs, nil
}

// decoder walks hstore text one pair at a time.  pos is a byte offset that
// always sits at the start of the next pair.
type decoder struct {
	text string
	pos  int
}

// readPair matches one pair, including a trailing separator, starting
// exactly at byte offset i.  It returns the pair and the offset just past it.
func (d *decoder) readPair(i int) (Pair, int, error) {
	key, i, err := d.readQuoted(i)
	if err != nil {
		return Pair{}, i, err
	}

	i = d.skipWS(i)
	if !strings.HasPrefix(d.text[i:], "=>") {
		return Pair{}, i, fmt.Errorf("expecting '=>'")
	}
	i = d.skipWS(i + 2)

	var value *string
	switch {
	case strings.HasPrefix(d.text[i:], "NULL"):
		i += 4
	case i < len(d.text) && d.text[i] == '"':
		var s string
		s, i, err = d.readQuoted(i)
		if err != nil {
			return Pair{}, i, err
		}
		value = &s
	default:
		return Pair{}, i, fmt.Errorf("expecting '\"' or NULL")
	}

	i, ok := d.readSeparator(i)
	if !ok {
		return Pair{}, i, fmt.Errorf("expecting ',' or end of text")
	}

	return Pair{Key: key, Value: value}, i, nil
}

// readQuoted reads a double-quoted string beginning at i and returns its
// unescaped content and the position after the closing quote.
func (d *decoder) readQuoted(i int) (string, int, error) {
	if i >= len(d.text) || d.text[i] != '"' {
		return "", i, fmt.Errorf("expecting '\"'")
	}
	i++
	contentStart := i
	escaped := false

	for i < len(d.text) {
		switch d.text[i] {
		case '"':
			s := d.text[contentStart:i]
			if escaped {
				s = Unescape(s)
			}
			return s, i + 1, nil
		case '\\':
			if i+1 >= len(d.text) {
				return "", i, fmt.Errorf("unterminated quoted string")
			}
			escaped = true
			// Skip the whole escaped character, which may be multi-byte.
			_, n := utf8.DecodeRuneInString(d.text[i+1:])
			i += 1 + n
		default:
			i++
		}
	}
	return "", i, fmt.Errorf("unterminated quoted string")
}

// readSeparator consumes a comma with optional surrounding white space, or
// recognizes the end of text.
func (d *decoder) readSeparator(i int) (int, bool) {
	if i == len(d.text) {
		return i, true
	}
	j := d.skipWS(i)
	if j < len(d.text) && d.text[j] == ',' {
		return d.skipWS(j + 1), true
	}
	return i, false
}

func (d *decoder) skipWS(i int) int {
	for i < len(d.text) {
		r, n := utf8.DecodeRuneInString(d.text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += n
	}
	return i
}

// parseError reports that no pair matched at d.pos.  If a well-formed pair
// exists further on, the text between is a malformed pair; otherwise
// everything from d.pos on is unparsed trailing data.
func (d *decoder) parseError(cause error) error {
	offset := utf8.RuneCountInString(d.text[:d.pos])
	if d.pairFollows() {
		return &ParseError{
			Offset: offset,
			Msg:    fmt.Sprintf("error parsing pair at char %d: %s", offset, cause),
		}
	}
	return &ParseError{
		Offset: offset,
		Msg:    fmt.Sprintf("unparsed data after char %d: %s", offset, cause),
	}
}

const (
	wsPattern     = `[\t\n\v\f\r \x{85}\p{Z}]*`
	quotedPattern = `"(?:[^"\\]|\\.)*"`
)

// pairRE matches the same text as readPair.  Its white space class is
// exactly unicode.IsSpace.
var pairRE = regexp.MustCompile(`(?s)` + quotedPattern + wsPattern + `=>` + wsPattern +
	`(?:NULL|` + quotedPattern + `)(?:` + wsPattern + `,` + wsPattern + `|$)`)

// pairFollows reports whether a pair matches anywhere after d.pos.  Every
// pair starts with a quote, so a match found by the linear-time regexp
// engine is a position where readPair would succeed.
func (d *decoder) pairFollows() bool {
	if d.pos+1 >= len(d.text) {
		return false
	}
	return pairRE.MatchString(d.text[d.pos+1:])
}
