package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// JSONMethodCodec frames method calls as UTF-8 JSON. Decoded JSON maps onto
// the same Value model as the binary format: integral numbers become Int64,
// other numbers Float64 and objects become Maps with String keys in
// document order.
type JSONMethodCodec struct{}

var _ MethodCodec = JSONMethodCodec{}

// DecodeJSON parses a single JSON document into a Value.
func DecodeJSON(b []byte) (Value, error) {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	v, err := readJSON(d, 0)
	if err != nil {
		return nil, err
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingBytes
	}
	return v, nil
}

func readJSON(d *json.Decoder, depth int) (Value, error) {
	tok, err := d.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrUnexpectedEndOfInput
		}
		return nil, fmt.Errorf("codec: json: %w", err)
	}
	switch t := tok.(type) {
	case nil:
		return Nil{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return Int64(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("codec: json number %q: %w", t, err)
		}
		return Float64(f), nil
	case json.Delim:
		if depth >= MaxDepth {
			return nil, ErrMaxDepthExceeded
		}
		switch t {
		case '[':
			var out List
			for d.More() {
				v, err := readJSON(d, depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			if _, err := d.Token(); err != nil {
				return nil, fmt.Errorf("codec: json: %w", err)
			}
			if out == nil {
				out = List{}
			}
			return out, nil
		case '{':
			out := Map{}
			for d.More() {
				k, err := d.Token()
				if err != nil {
					return nil, fmt.Errorf("codec: json: %w", err)
				}
				key, ok := k.(string)
				if !ok {
					return nil, fmt.Errorf("codec: json object key %v", k)
				}
				v, err := readJSON(d, depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, Entry{Key: String(key), Value: v})
			}
			if _, err := d.Token(); err != nil {
				return nil, fmt.Errorf("codec: json: %w", err)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("codec: unexpected json token %v", tok)
}

// EncodeJSON writes v as JSON. Map keys are written with their String text;
// typed arrays become JSON arrays.
func EncodeJSON(v Value) []byte {
	var buf bytes.Buffer
	writeJSON(&buf, v)
	return buf.Bytes()
}

func writeJSON(buf *bytes.Buffer, v Value) {
	if v == nil {
		buf.WriteString("null")
		return
	}
	switch t := v.(type) {
	case Nil:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(t)))
	case Int32:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case Int64:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case LargeInt:
		buf.WriteString(string(t))
	case Float64:
		writeFloat(buf, float64(t))
	case String:
		b, _ := json.Marshal(string(t))
		buf.Write(b)
	case Uint8List:
		writeArray(buf, len(t), func(i int) { buf.WriteString(strconv.Itoa(int(t[i]))) })
	case Int32List:
		writeArray(buf, len(t), func(i int) { buf.WriteString(strconv.FormatInt(int64(t[i]), 10)) })
	case Int64List:
		writeArray(buf, len(t), func(i int) { buf.WriteString(strconv.FormatInt(t[i], 10)) })
	case Float32List:
		writeArray(buf, len(t), func(i int) { writeFloat(buf, float64(t[i])) })
	case Float64List:
		writeArray(buf, len(t), func(i int) { writeFloat(buf, t[i]) })
	case List:
		writeArray(buf, len(t), func(i int) { writeJSON(buf, t[i]) })
	case Map:
		buf.WriteByte('{')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, ok := e.Key.(String)
			if !ok {
				key = String(string(EncodeJSON(e.Key)))
			}
			b, _ := json.Marshal(string(key))
			buf.Write(b)
			buf.WriteByte(':')
			writeJSON(buf, e.Value)
		}
		buf.WriteByte('}')
	}
}

func writeArray(buf *bytes.Buffer, n int, elem func(int)) {
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		elem(i)
	}
	buf.WriteByte(']')
}

func writeFloat(buf *bytes.Buffer, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteString("null")
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

// EncodeMethodCall writes {"method": ..., "args": ...}.
func (JSONMethodCodec) EncodeMethodCall(call MethodCall) []byte {
	return EncodeJSON(Map{
		{Key: String("method"), Value: String(call.Method)},
		{Key: String("args"), Value: call.Args},
	})
}

// DecodeMethodCall parses {"method": ..., "args": ...}.
func (JSONMethodCodec) DecodeMethodCall(b []byte) (MethodCall, error) {
	v, err := DecodeJSON(b)
	if err != nil {
		return MethodCall{}, err
	}
	m, ok := v.(Map)
	if !ok {
		return MethodCall{}, ErrInvalidMethodCall
	}
	name, ok := m.Get("method")
	if !ok {
		return MethodCall{}, ErrInvalidMethodCall
	}
	method, ok := name.(String)
	if !ok {
		return MethodCall{}, ErrInvalidMethodCall
	}
	args, ok := m.Get("args")
	if !ok {
		args = Nil{}
	}
	return MethodCall{Method: string(method), Args: args}, nil
}

// EncodeSuccessEnvelope writes [result].
func (JSONMethodCodec) EncodeSuccessEnvelope(result Value) []byte {
	return EncodeJSON(List{result})
}

// EncodeErrorEnvelope writes [code, message, details].
func (JSONMethodCodec) EncodeErrorEnvelope(code, message string, details Value) []byte {
	var msg Value = Nil{}
	if message != "" {
		msg = String(message)
	}
	return EncodeJSON(List{String(code), msg, details})
}

// DecodeEnvelope parses [result] or [code, message, details].
func (JSONMethodCodec) DecodeEnvelope(b []byte) (Value, error) {
	v, err := DecodeJSON(b)
	if err != nil {
		return nil, err
	}
	l, ok := v.(List)
	switch {
	case ok && len(l) == 1:
		return l[0], nil
	case ok && len(l) == 3:
		code, ok := l[0].(String)
		if !ok {
			return nil, ErrInvalidEnvelope
		}
		msg, _ := l[1].(String)
		return nil, &MethodError{Code: string(code), Message: string(msg), Details: l[2]}
	default:
		return nil, ErrInvalidEnvelope
	}
}
