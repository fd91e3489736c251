// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package hstore

import (
	"database/sql/driver"
	"fmt"
)

// Hstore maps keys to values.  A nil value is SQL NULL.
type Hstore map[string]*string

// Pair is a single key/value entry.  A nil Value is SQL NULL.  A slice of
// pairs is an hstore whose encoding order is the slice order.
type Pair struct {
	Key   string
	Value *string
}

// Value implements driver.Valuer.  A nil Hstore is SQL NULL.
func (h Hstore) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	return Dump(h)
}

// Scan implements sql.Scanner for hstore text in string or []byte form.
func (h *Hstore) Scan(src any) error {
	var text string
	switch src := src.(type) {
	case nil:
		*h = nil
		return nil
	case string:
		text = src
	case []byte:
		text = string(src)
	default:
		return fmt.Errorf("hstore: cannot scan %T into Hstore", src)
	}

	m, err := Load(text)
	if err != nil {
		return err
	}
	*h = m
	return nil
}
