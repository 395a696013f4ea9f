package optional

import (
	"bytes"
	"encoding/json"
)

// NoneError is returned when a value is read from an empty Option.
type NoneError struct{}

func (NoneError) Error() string { return "no value present" }

// GoString is the structural form used when rendering the error for a terminal.
func (NoneError) GoString() string { return "optional.NoneError{no value present}" }

// Option holds a value of type T or nothing.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] { return Option[T]{value: v, ok: true} }

// None returns an empty Option.
func None[T any]() Option[T] { return Option[T]{} }

func (o Option[T]) IsSome() bool { return o.ok }

// Get returns the held value, or NoneError if the Option is empty.
func (o Option[T]) Get() (T, error) {
	if !o.ok {
		var zero T
		return zero, NoneError{}
	}
	return o.value, nil
}

// OrElse returns the held value or fallback when empty.
func (o Option[T]) OrElse(fallback T) T {
	if !o.ok {
		return fallback
	}
	return o.value
}

// MarshalJSON encodes an empty Option as null.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON treats null as None. Absent fields never reach here and stay None.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
