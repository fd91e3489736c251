package hstore

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Client encodings by normalized PostgreSQL name.  A nil entry is handled
// without conversion.
var clientEncodings = map[string]encoding.Encoding{
	"UTF8":     nil,
	"UNICODE":  nil,
	"SQLASCII": nil,
	"LATIN1":   charmap.ISO8859_1,
	"LATIN2":   charmap.ISO8859_2,
	"LATIN3":   charmap.ISO8859_3,
	"LATIN4":   charmap.ISO8859_4,
	"LATIN5":   charmap.ISO8859_9,
	"LATIN6":   charmap.ISO8859_10,
	"LATIN7":   charmap.ISO8859_13,
	"LATIN8":   charmap.ISO8859_14,
	"LATIN9":   charmap.ISO8859_15,
	"LATIN10":  charmap.ISO8859_16,
	"ISO88595": charmap.ISO8859_5,
	"ISO88596": charmap.ISO8859_6,
	"ISO88597": charmap.ISO8859_7,
	"ISO88598": charmap.ISO8859_8,
	"WIN866":   charmap.CodePage866,
	"WIN874":   charmap.Windows874,
	"WIN1250":  charmap.Windows1250,
	"WIN1251":  charmap.Windows1251,
	"WIN1252":  charmap.Windows1252,
	"WIN1253":  charmap.Windows1253,
	"WIN1254":  charmap.Windows1254,
	"WIN1255":  charmap.Windows1255,
	"WIN1256":  charmap.Windows1256,
	"WIN1257":  charmap.Windows1257,
	"WIN1258":  charmap.Windows1258,
	"KOI8R":    charmap.KOI8R,
	"KOI8U":    charmap.KOI8U,
	"EUCJP":    japanese.EUCJP,
	"SJIS":     japanese.ShiftJIS,
	"EUCKR":    korean.EUCKR,
	"GBK":      simplifiedchinese.GBK,
	"GB18030":  simplifiedchinese.GB18030,
	"BIG5":     traditionalchinese.Big5,
}

// NewTranscoder returns a Transcoder for a PostgreSQL client encoding name
// such as "UTF8", "LATIN1" or "win1252".  Case, '-' and '_' are ignored.
func NewTranscoder(clientEncoding string) (Transcoder, error) {
	name := normalizeEncodingName(clientEncoding)
	enc, ok := clientEncodings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, clientEncoding)
	}
	switch {
	case name == "SQLASCII":
		return rawTranscoder{}, nil
	case enc == nil:
		return utf8Transcoder{}, nil
	}
	return &charsetTranscoder{name: name, enc: enc}, nil
}

func normalizeEncodingName(s string) string {
	s = strings.ToUpper(s)
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}

// utf8Transcoder passes text through and rejects invalid UTF-8 on decode.
type utf8Transcoder struct{}

func (utf8Transcoder) EncodeText(s string) ([]byte, error) {
	return []byte(s), nil
}

func (utf8Transcoder) DecodeText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("invalid byte sequence for encoding UTF8")
	}
	return string(b), nil
}

// rawTranscoder passes bytes through unchecked, as SQL_ASCII does.
type rawTranscoder struct{}

func (rawTranscoder) EncodeText(s string) ([]byte, error) { return []byte(s), nil }
func (rawTranscoder) DecodeText(b []byte) (string, error) { return string(b), nil }

type charsetTranscoder struct {
	name string
	enc  encoding.Encoding
}

func (t *charsetTranscoder) EncodeText(s string) ([]byte, error) {
	b, err := t.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding to %s: %w", t.name, err)
	}
	return b, nil
}

func (t *charsetTranscoder) DecodeText(b []byte) (string, error) {
	s, err := t.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decoding from %s: %w", t.name, err)
	}
	return string(s), nil
}
