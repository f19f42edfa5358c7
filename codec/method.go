package codec

import "fmt"

// MethodCall is a decoded platform channel method invocation.
type MethodCall struct {
	Method string
	Args   Value
}

// ArgsMap returns the arguments as a Map, or an empty Map.
func (c MethodCall) ArgsMap() Map {
	m, _ := c.Args.(Map)
	return m
}

// MethodCodec converts method calls and result envelopes to and from bytes.
// A channel uses one codec for both directions.
type MethodCodec interface {
	EncodeMethodCall(call MethodCall) []byte
	DecodeMethodCall(b []byte) (MethodCall, error)
	EncodeSuccessEnvelope(result Value) []byte
	EncodeErrorEnvelope(code, message string, details Value) []byte
	// DecodeEnvelope returns the result of a success envelope or a
	// *MethodError for an error envelope.
	DecodeEnvelope(b []byte) (Value, error)
}

// StandardMethodCodec frames method calls with the standard binary format.
type StandardMethodCodec struct{}

var _ MethodCodec = StandardMethodCodec{}

// EncodeMethodCall writes the method name followed by the arguments.
func (StandardMethodCodec) EncodeMethodCall(call MethodCall) []byte {
	var w Writer
	w.WriteValue(String(call.Method))
	w.WriteValue(call.Args)
	return w.Bytes()
}

// DecodeMethodCall reads a method name and its arguments.
func (StandardMethodCodec) DecodeMethodCall(b []byte) (MethodCall, error) {
	r := NewReader(b)
	name, err := r.ReadValue()
	if err != nil {
		return MethodCall{}, err
	}
	method, ok := name.(String)
	if !ok {
		return MethodCall{}, fmt.Errorf("%w: method name is %v", ErrInvalidMethodCall, name.Kind())
	}
	args, err := r.ReadValue()
	if err != nil {
		return MethodCall{}, err
	}
	if r.Len() != 0 {
		return MethodCall{}, &DecodeError{Offset: r.Offset(), Err: ErrTrailingBytes}
	}
	return MethodCall{Method: string(method), Args: args}, nil
}

// EncodeSuccessEnvelope writes 0x00 followed by the result.
func (StandardMethodCodec) EncodeSuccessEnvelope(result Value) []byte {
	var w Writer
	_ = w.WriteByte(0)
	w.WriteValue(result)
	return w.Bytes()
}

// EncodeErrorEnvelope writes 0x01 followed by code, message and details.
func (StandardMethodCodec) EncodeErrorEnvelope(code, message string, details Value) []byte {
	var w Writer
	_ = w.WriteByte(1)
	w.WriteValue(String(code))
	if message == "" {
		w.WriteValue(Nil{})
	} else {
		w.WriteValue(String(message))
	}
	w.WriteValue(details)
	return w.Bytes()
}

// DecodeEnvelope decodes a success or error envelope.
func (StandardMethodCodec) DecodeEnvelope(b []byte) (Value, error) {
	r := NewReader(b)
	flag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch flag {
	case 0:
		v, err := r.ReadValue()
		if err != nil {
			return nil, err
		}
		if r.Len() != 0 {
			return nil, &DecodeError{Offset: r.Offset(), Err: ErrTrailingBytes}
		}
		return v, nil
	case 1:
		code, err := r.ReadValue()
		if err != nil {
			return nil, err
		}
		msg, err := r.ReadValue()
		if err != nil {
			return nil, err
		}
		details, err := r.ReadValue()
		if err != nil {
			return nil, err
		}
		c, ok := code.(String)
		if !ok {
			return nil, ErrInvalidEnvelope
		}
		m, _ := msg.(String)
		return nil, &MethodError{Code: string(c), Message: string(m), Details: details}
	default:
		return nil, &DecodeError{Offset: 0, Err: ErrInvalidEnvelope}
	}
}
