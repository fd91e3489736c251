package hstore

import (
	"reflect"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Dump encodes v as hstore text.  v may be an Hstore, a []Pair, a bson.D, or
// any map with string keys whose values are strings, pointers to strings, or
// nil.  An empty input encodes as the empty string.  A key or value of any
// other type is a *TypeError.
func Dump(v any) (string, error) {
	pairs, err := pairsOf(v)
	if err != nil {
		return "", err
	}
	if len(pairs) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeQuoted(&b, p.Key)
		b.WriteString("=>")
		if p.Value == nil {
			b.WriteString("NULL")
		} else {
			writeQuoted(&b, *p.Value)
		}
	}
	return b.String(), nil
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(Escape(s))
	b.WriteByte('"')
}

// pairsOf normalizes every supported input to pairs in encoding order and
// checks that all keys and values are strings or NULL.
func pairsOf(v any) ([]Pair, error) {
	switch v := v.(type) {
	case nil:
		return nil, &TypeError{}
	case []Pair:
		return v, nil
	case Hstore:
		return sortedPairs(v), nil
	case map[string]*string:
		return sortedPairs(v), nil
	case map[string]string:
		pairs := make([]Pair, 0, len(v))
		for k, s := range v {
			s := s
			pairs = append(pairs, Pair{Key: k, Value: &s})
		}
		sortPairs(pairs)
		return pairs, nil
	case bson.D:
		pairs := make([]Pair, 0, len(v))
		for _, e := range v {
			s, err := stringValue(reflect.ValueOf(e.Value))
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: e.Key, Value: s})
		}
		return pairs, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, &TypeError{Type: rv.Type()}
	}

	pairs := make([]Pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return nil, &TypeError{Role: "key", Type: typeOf(k)}
		}
		s, err := stringValue(iter.Value())
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Key: k.String(), Value: s})
	}
	sortPairs(pairs)
	return pairs, nil
}

func sortedPairs(m map[string]*string) []Pair {
	pairs := make([]Pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	sortPairs(pairs)
	return pairs
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
}

// stringValue returns nil for NULL or a pointer to the string held by v.
func stringValue(v reflect.Value) (*string, error) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.String:
		s := v.String()
		return &s, nil
	case reflect.Pointer:
		if v.Type().Elem().Kind() != reflect.String {
			break
		}
		if v.IsNil() {
			return nil, nil
		}
		s := v.Elem().String()
		return &s, nil
	}
	return nil, &TypeError{Role: "value", Type: v.Type()}
}

func typeOf(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}
