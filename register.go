package hstore

import (
	"errors"
	"fmt"
	"reflect"
)

// dumpTypes are the map types bound to the hstore dumper.
var dumpTypes = []reflect.Type{
	reflect.TypeOf(Hstore(nil)),
	reflect.TypeOf(map[string]*string(nil)),
	reflect.TypeOf(map[string]string(nil)),
}

// RegisterHstore registers the hstore type described by info with ctx: an
// HstoreDumper for info.OID handles Hstore, map[string]*string and
// map[string]string values, and an HstoreLoader handles values of info.OID,
// both in text format.  Registering again with the same ctx leaves the
// registry unchanged.
func RegisterHstore(info TypeInfo, ctx AdaptContext) error {
	if ctx == nil || ctx.Adapters() == nil {
		return errors.New("hstore: register: no adaptation context")
	}
	if info.OID == 0 {
		return fmt.Errorf("hstore: register: type %q has no OID", info.Name)
	}

	info.Register(ctx)
	adapters := ctx.Adapters()
	dumper := &HstoreDumper{oid: info.OID}
	for _, t := range dumpTypes {
		adapters.RegisterDumper(t, dumper)
	}
	adapters.RegisterLoader(info.OID, &HstoreLoader{})
	return nil
}

// HstoreDumper encodes maps as hstore text for a specific hstore OID.
type HstoreDumper struct {
	oid OID
}

// NewHstoreDumper returns a dumper that tags its output with oid.
func NewHstoreDumper(oid OID) *HstoreDumper {
	return &HstoreDumper{oid: oid}
}

// OID returns the hstore OID the dumper was created for.
func (d *HstoreDumper) OID() OID { return d.oid }

// Format returns TextFormat.
func (d *HstoreDumper) Format() Format { return TextFormat }

// Dump encodes v, which may be any value accepted by the Dump function, and
// converts the text to the client encoding with tc.
func (d *HstoreDumper) Dump(tc Transcoder, v any) ([]byte, error) {
	text, err := Dump(v)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return []byte{}, nil
	}
	b, err := tc.EncodeText(text)
	if err != nil {
		return nil, fmt.Errorf("hstore: encoding text: %w", err)
	}
	return b, nil
}

// HstoreLoader decodes hstore text into an Hstore.
type HstoreLoader struct{}

// Format returns TextFormat.
func (l *HstoreLoader) Format() Format { return TextFormat }

// Load converts data from the client encoding with tc and decodes it.  The
// result is an Hstore.
func (l *HstoreLoader) Load(tc Transcoder, data []byte) (any, error) {
	text, err := tc.DecodeText(data)
	if err != nil {
		return nil, fmt.Errorf("hstore: decoding text: %w", err)
	}
	h, err := Load(text)
	if err != nil {
		return nil, err
	}
	return h, nil
}
