package codec

import "fmt"

// Kind identifies the wire type of a Value.
type Kind uint8

// Wire type tags of the standard message format.
const (
	KindNil         Kind = 0
	KindTrue        Kind = 1
	KindFalse       Kind = 2
	KindInt32       Kind = 3
	KindInt64       Kind = 4
	KindLargeInt    Kind = 5
	KindFloat64     Kind = 6
	KindString      Kind = 7
	KindUint8List   Kind = 8
	KindInt32List   Kind = 9
	KindInt64List   Kind = 10
	KindFloat64List Kind = 11
	KindList        Kind = 12
	KindMap         Kind = 13
	KindFloat32List Kind = 14
)

// String returns the tag name.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindTrue, KindFalse:
		return "Bool"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindLargeInt:
		return "LargeInt"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindUint8List:
		return "Uint8List"
	case KindInt32List:
		return "Int32List"
	case KindInt64List:
		return "Int64List"
	case KindFloat64List:
		return "Float64List"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindFloat32List:
		return "Float32List"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is one decoded message value. The concrete types below are the
// only implementations; a nil Value encodes as Nil.
type Value interface {
	Kind() Kind
}

type (
	// Nil is the absent value.
	Nil struct{}
	// Bool is true or false.
	Bool bool
	// Int32 is a 32-bit signed integer.
	Int32 int32
	// Int64 is a 64-bit signed integer.
	Int64 int64
	// LargeInt is an integer too large for 64 bits, carried as hex text.
	LargeInt string
	// Float64 is an IEEE 754 double.
	Float64 float64
	// String is UTF-8 text.
	String string
	// Uint8List is a raw byte buffer.
	Uint8List []byte
	// Int32List is a packed array of int32.
	Int32List []int32
	// Int64List is a packed array of int64.
	Int64List []int64
	// Float32List is a packed array of float32.
	Float32List []float32
	// Float64List is a packed array of float64.
	Float64List []float64
	// List is an ordered sequence of values.
	List []Value
	// Map is a sequence of key/value pairs in wire order.
	Map []Entry
)

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   Value
	Value Value
}

func (Nil) Kind() Kind         { return KindNil }
func (LargeInt) Kind() Kind    { return KindLargeInt }
func (Int32) Kind() Kind       { return KindInt32 }
func (Int64) Kind() Kind       { return KindInt64 }
func (Float64) Kind() Kind     { return KindFloat64 }
func (String) Kind() Kind      { return KindString }
func (Uint8List) Kind() Kind   { return KindUint8List }
func (Int32List) Kind() Kind   { return KindInt32List }
func (Int64List) Kind() Kind   { return KindInt64List }
func (Float32List) Kind() Kind { return KindFloat32List }
func (Float64List) Kind() Kind { return KindFloat64List }
func (List) Kind() Kind        { return KindList }
func (Map) Kind() Kind         { return KindMap }

// Kind reports KindTrue or KindFalse.
func (b Bool) Kind() Kind {
	if b {
		return KindTrue
	}
	return KindFalse
}

// Get returns the value stored under the string key, if any.
func (m Map) Get(key string) (Value, bool) {
	for _, e := range m {
		if s, ok := e.Key.(String); ok && string(s) == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key or appends a new entry.
func (m *Map) Set(key string, v Value) {
	for i, e := range *m {
		if s, ok := e.Key.(String); ok && string(s) == key {
			(*m)[i].Value = v
			return
		}
	}
	*m = append(*m, Entry{Key: String(key), Value: v})
}

// IsNil reports whether v is absent.
func IsNil(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Nil)
	return ok
}

// AsInt returns v as an int64 when it holds any integer kind. Integral
// floats are accepted because JSON payloads do not distinguish them.
func AsInt(v Value) (int64, bool) {
	switch n := v.(type) {
	case Int32:
		return int64(n), true
	case Int64:
		return int64(n), true
	case Float64:
		if float64(int64(n)) == float64(n) {
			return int64(n), true
		}
	}
	return 0, false
}

// AsFloat returns v as a float64 when it holds any numeric kind.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Float64:
		return float64(n), true
	case Int32:
		return float64(n), true
	case Int64:
		return float64(n), true
	}
	return 0, false
}

// AsString returns the text of a String value.
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

// AsBool returns the value of a Bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// AsMap returns v as a Map.
func AsMap(v Value) (Map, bool) {
	m, ok := v.(Map)
	return m, ok
}

// AsList returns v as a List.
func AsList(v Value) (List, bool) {
	l, ok := v.(List)
	return l, ok
}
