package hstore

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

type loadTestCase struct {
	label  string
	input  string
	output Hstore
	errStr string
	offset int
}

func testWithLoad(t *testing.T, cases []loadTestCase) {
	t.Helper()

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			got, err := Load(c.input)
			if c.errStr != "" {
				if err == nil {
					t.Fatalf("expected error with '%s', but got %v", c.errStr, got)
				}
				if !strings.Contains(err.Error(), c.errStr) {
					t.Errorf("expected error with '%s', but got %v", c.errStr, err)
				}
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("error wasn't a ParseError: %v", err)
				}
				if pe.Offset != c.offset {
					t.Errorf("expected offset %d, but got %d", c.offset, pe.Offset)
				}
				if got != nil {
					t.Errorf("expected no map on error, but got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(c.output, got); diff != "" {
				t.Fatalf("Load mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func getTestFiles(t *testing.T, dir, prefix, suffix string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	keep := make([]string, 0)
	for _, entry := range entries {
		name := entry.Name()
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		if suffix != "" && !strings.HasSuffix(name, suffix) {
			continue
		}
		keep = append(keep, name)
	}

	return keep
}

func str(s string) *string { return &s }

// The hstore grammar as a single regular expression.  White space matches
// exactly what unicode.IsSpace accepts.
const refWS = `[\t\n\v\f\r \x{85}\p{Z}]`

var refPairRE = regexp.MustCompile(`(?s)` +
	`"((?:[^"\\]|\\.)*)"` +
	refWS + `*=>` + refWS + `*` +
	`(?:NULL|"((?:[^"\\]|\\.)*)")` +
	`(?:` + refWS + `*,` + refWS + `*|$)`)

var refUnescapeRE = regexp.MustCompile(`(?s)\\(.)`)

// refLoad is a reference decoder built on refPairRE.  It scans for pair
// matches anywhere in the text and rejects the text unless the matches are
// contiguous from the start to the end.  It returns the rejected offset in
// characters, or -1, and whether the rejected text was trailing data with no
// further match.
func refLoad(s string) (Hstore, int, bool) {
	h := Hstore{}
	start := 0
	for _, m := range refPairRE.FindAllStringSubmatchIndex(s, -1) {
		if m[0] != start {
			return nil, utf8.RuneCountInString(s[:start]), false
		}
		k := refUnescapeRE.ReplaceAllString(s[m[2]:m[3]], "$1")
		if m[4] < 0 {
			h[k] = nil
		} else {
			v := refUnescapeRE.ReplaceAllString(s[m[4]:m[5]], "$1")
			h[k] = &v
		}
		start = m[1]
	}
	if start < len(s) {
		return nil, utf8.RuneCountInString(s[:start]), true
	}
	return h, -1, false
}
