// Package optional carries request fields that may be missing, explicitly null,
// or set. Missing and null are different states: a JSON payload that omits a key
// leaves the Value absent, while a literal null marks it null.
package optional

import (
	"bytes"

	"github.com/goccy/go-json"
)

type state uint8

const (
	absent state = iota
	null
	present
)

// Value is a T that may be absent, null or present. The zero Value is absent.
type Value[T any] struct {
	v     T
	state state
}

// Of returns a present Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{v: v, state: present}
}

// Empty returns an absent Value.
func Empty[T any]() Value[T] {
	return Value[T]{}
}

// Null returns a Value that was explicitly set to null.
func Null[T any]() Value[T] {
	return Value[T]{state: null}
}

// FromPtr maps nil to absent and anything else to present.
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return Empty[T]()
	}
	return Of(*p)
}

// Get returns the held value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.state == present
}

// OrElse returns the held value, or d when the Value is not present.
func (o Value[T]) OrElse(d T) T {
	if o.state == present {
		return o.v
	}
	return d
}

func (o Value[T]) IsPresent() bool { return o.state == present }
func (o Value[T]) IsNull() bool    { return o.state == null }
func (o Value[T]) IsAbsent() bool  { return o.state == absent }

// Any returns the held value boxed, nil for null, and false when absent.
// It is the bridge used to turn typed fields into query criteria.
func (o Value[T]) Any() (any, bool) {
	switch o.state {
	case present:
		return o.v, true
	case null:
		return nil, true
	default:
		return nil, false
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.v, o.state = zero, null
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.v, o.state = v, present
	return nil
}

// MarshalJSON implements json.Marshaler. Absent and null both encode as null.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if o.state != present {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}
