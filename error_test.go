package hstore

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseError(t *testing.T) {
	_, err := Load(`"a"=>`)
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	wrapped := fmt.Errorf("wrapped: %w", err)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatal("error wasn't a ParseError")
	}
	if !errors.As(wrapped, &pe) {
		t.Fatal("wrapped error wasn't a ParseError")
	}
	if pe.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", pe.Offset)
	}
}

func TestTypeError(t *testing.T) {
	_, err := Dump(map[string]any{"a": 1.5})
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	wrapped := fmt.Errorf("wrapped: %w", err)

	var te *TypeError
	if !errors.As(wrapped, &te) {
		t.Fatal("wrapped error wasn't a TypeError")
	}
	if te.Role != "value" {
		t.Fatalf("expected role value, got %q", te.Role)
	}
	if err.Error() != "hstore: values can only be strings, got float64" {
		t.Fatalf("unexpected message: %v", err)
	}
}
