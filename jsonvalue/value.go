// Package jsonvalue provides a tagged-union representation of arbitrary JSON
// documents. Objects keep their keys in insertion order so that walks over a
// document are deterministic and reproduce the order in which the producer
// wrote the fields.
//
// Every value is one of six concrete types:
//
//	Null, Bool, Number, String, Array, *Object
//
// Callers switch on the concrete type rather than probing at runtime:
//
//	switch v := value.(type) {
//	case jsonvalue.Number:
//		...
//	case *jsonvalue.Object:
//		...
//	}
package jsonvalue

import (
	"encoding/json"
	"iter"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "invalid"
}

// Value is a JSON value. The set of implementations is closed.
type Value interface {
	json.Marshaler
	Kind() Kind
	value()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number. Integers and floats share one representation.
type Number float64

// String is a JSON string.
type String string

// Array is a JSON array.
type Array []Value

var (
	_ Value = Null{}
	_ Value = Bool(false)
	_ Value = Number(0)
	_ Value = String("")
	_ Value = Array(nil)
	_ Value = (*Object)(nil)
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

func (Null) value()   {}
func (Bool) value()   {}
func (Number) value() {}
func (String) value() {}
func (Array) value()  {}

// Object is a JSON object that remembers the order keys were first set.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty object with room for n keys.
func NewObject(n int) *Object {
	return &Object{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) value()     {}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present, even if its value is null.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v under key. A key that already exists keeps its position and
// takes the new value.
func (o *Object) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// All iterates over key/value pairs in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// Object returns the nested object stored under key, if the value is an object.
func (o *Object) Object(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := NewObject(len(o.keys))
	for k, v := range o.All() {
		c.Set(k, Clone(v))
	}
	return c
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch v := v.(type) {
	case *Object:
		return v.Clone()
	case Array:
		c := make(Array, len(v))
		for i, item := range v {
			c[i] = Clone(item)
		}
		return c
	case nil:
		return Null{}
	default:
		return v
	}
}

// AsNumber returns the numeric value of v. Booleans are not numbers.
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(Number)
	return float64(n), ok
}

// AsString returns the string value of v.
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

// IsNull reports whether v is null or absent.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// IsScalar reports whether v is neither an array nor an object.
func IsScalar(v Value) bool {
	switch v.(type) {
	case *Object, Array:
		return false
	}
	return true
}
