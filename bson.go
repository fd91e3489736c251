package hstore

import (
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// AppendBSON converts v to a BSON document and appends it to dst.  v may be
// anything Dump accepts; keys are written in the same order Dump uses.
// Values become BSON strings and NULL becomes BSON null.  Keys containing NUL
// are an error since BSON keys are C strings.  The final buffer is
// returned, just like with `append`.
func AppendBSON(dst []byte, v any) ([]byte, error) {
	pairs, err := pairsOf(v)
	if err != nil {
		return nil, err
	}

	idx, dst := bsoncore.AppendDocumentStart(dst)
	for _, p := range pairs {
		if strings.IndexByte(p.Key, 0) >= 0 {
			return nil, fmt.Errorf("hstore: BSON keys can't contain NUL: %q", p.Key)
		}
		if p.Value == nil {
			dst = bsoncore.AppendNullElement(dst, p.Key)
		} else {
			dst = bsoncore.AppendStringElement(dst, p.Key, *p.Value)
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

// FromBSON converts a BSON document of string and null values to an Hstore.
// Any other value type is a *TypeError.  When a key repeats, the last value
// wins.
func FromBSON(doc []byte) (Hstore, error) {
	raw := bson.Raw(doc)
	elems, err := raw.Elements()
	if err != nil {
		return nil, fmt.Errorf("hstore: invalid BSON document: %w", err)
	}

	h := make(Hstore, len(elems))
	for _, e := range elems {
		v := e.Value()
		switch v.Type {
		case bsontype.Null:
			h[e.Key()] = nil
		case bsontype.String:
			s := v.StringValue()
			h[e.Key()] = &s
		default:
			return nil, &TypeError{Role: "value", Type: bsonGoType(v)}
		}
	}
	return h, nil
}

// bsonGoType returns the Go type the driver decodes v to by default, for
// error reporting.
func bsonGoType(v bson.RawValue) reflect.Type {
	if gt, err := bson.DefaultRegistry.LookupTypeMapEntry(v.Type); err == nil {
		return gt
	}
	return reflect.TypeOf(v)
}
