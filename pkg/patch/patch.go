// Package patch models partial-update payloads where a field that was left
// out of the request must be told apart from a field explicitly set to null.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field holds an optional update. Set reports whether the field was present
// in the payload at all; Value is the (possibly zero or nil) new value.
type Field[T any] struct {
	Set   bool
	Value T
}

func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null marks a nullable field as explicitly cleared.
func Null[T any]() Field[*T] {
	return Field[*T]{Set: true}
}

// UnmarshalJSON is only invoked when the key exists, so reaching it means Set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Get returns the value and whether it was provided.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// Or returns the provided value, or current when the field was omitted.
func (f Field[T]) Or(current T) T {
	if f.Set {
		return f.Value
	}
	return current
}
