// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package hstore converts between Go maps and the text representation of the
// PostgreSQL hstore type.  An hstore is a set of string keys, each mapped to a
// string value or to NULL:
//
//	"a"=>"1", "b note"=>"x\"y", "c"=>NULL
//
// Dump encodes a map as hstore text and Load decodes hstore text into an
// Hstore.  Both are pure functions and safe for concurrent use.
//
// # Parsing
//
// Load requires the entire input to be accounted for by consecutive pairs.
// It never skips over text it doesn't understand: the first pair that fails
// to match at the current position aborts decoding with a *ParseError
// carrying the offset, in characters, of that position.  Keys that repeat
// within one value keep the last occurrence.
//
// # Encoding order
//
// Ordered inputs ([]Pair, bson.D) are encoded in slice order.  Go maps are
// encoded in ascending key order so output is deterministic.
//
// # Client adaptation
//
// A database client reaches the codec through RegisterHstore, which binds an
// HstoreDumper and HstoreLoader for a given type OID into an explicit Adapters
// registry.  Converting between hstore text and wire bytes is delegated to a
// Transcoder for the connection's client encoding.
//
// # BSON and database/sql
//
// AppendBSON and FromBSON convert between hstore values and BSON documents of
// string and null values.  Hstore implements driver.Valuer and sql.Scanner.
package hstore
