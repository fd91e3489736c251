package hstore

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
)

// OID is a PostgreSQL type object identifier.
type OID uint32

// Format is the PostgreSQL wire format of a value.
type Format int

// Wire formats.
const (
	TextFormat   Format = 0
	BinaryFormat Format = 1
)

func (f Format) String() string {
	switch f {
	case TextFormat:
		return "text"
	case BinaryFormat:
		return "binary"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// TypeInfo describes a database type.  Extension types such as hstore have
// OIDs that differ between databases, so callers look them up and describe
// them with a TypeInfo before registering adapters.
type TypeInfo struct {
	Name     string
	OID      OID
	ArrayOID OID
}

// Register records info in the registry of ctx so it can be found by name.
func (info TypeInfo) Register(ctx AdaptContext) {
	ctx.Adapters().RegisterType(info)
}

// Transcoder converts between text and the bytes of a connection's client
// encoding.
type Transcoder interface {
	EncodeText(s string) ([]byte, error)
	DecodeText(b []byte) (string, error)
}

// Dumper converts Go values to wire bytes for a database type.
type Dumper interface {
	OID() OID
	Format() Format
	Dump(tc Transcoder, v any) ([]byte, error)
}

// Loader converts wire bytes of a database type to Go values.
type Loader interface {
	Format() Format
	Load(tc Transcoder, data []byte) (any, error)
}

// AdaptContext gives access to the adapters registry and text transcoding of
// a connection or other scope.
type AdaptContext interface {
	Adapters() *Adapters
	Transcoder() Transcoder
}

type dumperKey struct {
	typ    reflect.Type
	format Format
}

type loaderKey struct {
	oid    OID
	format Format
}

// Adapters is a registry of dumpers by Go type and loaders by OID.  It is
// safe for concurrent use.
type Adapters struct {
	logger *slog.Logger

	mu      sync.RWMutex
	dumpers map[dumperKey]Dumper
	loaders map[loaderKey]Loader
	types   map[string]TypeInfo
}

// NewAdapters returns an empty registry.  A nil logger discards log output.
func NewAdapters(logger *slog.Logger) *Adapters {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapters{
		logger:  logger,
		dumpers: make(map[dumperKey]Dumper),
		loaders: make(map[loaderKey]Loader),
		types:   make(map[string]TypeInfo),
	}
}

// RegisterType records info by name, replacing any previous entry.
func (a *Adapters) RegisterType(info TypeInfo) {
	a.mu.Lock()
	a.types[info.Name] = info
	a.mu.Unlock()
	a.logger.Debug("registered type", "name", info.Name, "oid", info.OID, "array_oid", info.ArrayOID)
}

// Type returns the TypeInfo registered under name.
func (a *Adapters) Type(name string) (TypeInfo, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, ok := a.types[name]
	return info, ok
}

// RegisterDumper binds d as the dumper for Go values of type t in d's format.
func (a *Adapters) RegisterDumper(t reflect.Type, d Dumper) {
	a.mu.Lock()
	a.dumpers[dumperKey{t, d.Format()}] = d
	a.mu.Unlock()
	a.logger.Debug("registered dumper", "type", t.String(), "format", d.Format(), "oid", d.OID())
}

// RegisterLoader binds l as the loader for values of oid in l's format.
func (a *Adapters) RegisterLoader(oid OID, l Loader) {
	a.mu.Lock()
	a.loaders[loaderKey{oid, l.Format()}] = l
	a.mu.Unlock()
	a.logger.Debug("registered loader", "oid", oid, "format", l.Format())
}

// Dumper returns the dumper registered for t in format f.
func (a *Adapters) Dumper(t reflect.Type, f Format) (Dumper, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	d, ok := a.dumpers[dumperKey{t, f}]
	if !ok {
		return nil, fmt.Errorf("%w for %v in %s format", ErrNoDumper, t, f)
	}
	return d, nil
}

// Loader returns the loader registered for oid in format f.
func (a *Adapters) Loader(oid OID, f Format) (Loader, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	l, ok := a.loaders[loaderKey{oid, f}]
	if !ok {
		return nil, fmt.Errorf("%w for oid %d in %s format", ErrNoLoader, oid, f)
	}
	return l, nil
}

// Context is a basic AdaptContext pairing a registry with a transcoder.
type Context struct {
	adapters   *Adapters
	transcoder Transcoder
}

// NewContext returns a Context for adapters and tc.
func NewContext(adapters *Adapters, tc Transcoder) *Context {
	return &Context{adapters: adapters, transcoder: tc}
}

// Adapters implements AdaptContext.
func (c *Context) Adapters() *Adapters { return c.adapters }

// Transcoder implements AdaptContext.
func (c *Context) Transcoder() Transcoder { return c.transcoder }

// DumpValue encodes v with the text-format dumper registered for its type and
// returns the value's OID with the bytes.
func (c *Context) DumpValue(v any) (OID, []byte, error) {
	d, err := c.adapters.Dumper(reflect.TypeOf(v), TextFormat)
	if err != nil {
		return 0, nil, err
	}
	b, err := d.Dump(c.transcoder, v)
	if err != nil {
		return 0, nil, err
	}
	return d.OID(), b, nil
}

// LoadValue decodes data with the text-format loader registered for oid.
func (c *Context) LoadValue(oid OID, data []byte) (any, error) {
	l, err := c.adapters.Loader(oid, TextFormat)
	if err != nil {
		return nil, err
	}
	return l.Load(c.transcoder, data)
}
