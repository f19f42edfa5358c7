package codec

import (
	"encoding/binary"
	"io"
	"math"
)

// MaxDepth bounds List/Map nesting accepted by the decoder.
const MaxDepth = 64

const (
	sizeMarker16 = 254
	sizeMarker32 = 255
)

// Decode decodes exactly one value from b. Bytes left over after the value
// are reported as ErrTrailingBytes.
func Decode(b []byte) (Value, error) {
	r := NewReader(b)
	v, err := r.ReadValue()
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, &DecodeError{Offset: r.pos, Err: ErrTrailingBytes}
	}
	return v, nil
}

// Encode returns the standard encoding of v.
func Encode(v Value) []byte {
	var w Writer
	w.WriteValue(v)
	return w.Bytes()
}

// Reader is a forward-only cursor over an encoded buffer. Alignment of
// typed arrays is computed relative to the start of the buffer.
type Reader struct {
	buf   []byte
	pos   int
	depth int
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// Offset returns the cursor position.
func (r *Reader) Offset() int { return r.pos }

func (r *Reader) fail(err error) error {
	return &DecodeError{Offset: r.pos, Err: err}
}

// take consumes n bytes, failing without advancing when fewer remain.
func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.fail(ErrUnexpectedEndOfInput)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadByte reads one raw byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadSize reads a variable-width size prefix.
func (r *Reader) ReadSize() (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b < sizeMarker16:
		return int(b), nil
	case b == sizeMarker16:
		p, err := r.take(2)
		if err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint16(p)), nil
	default:
		p, err := r.take(4)
		if err != nil {
			return 0, err
		}
		n := binary.LittleEndian.Uint32(p)
		if uint64(n) > uint64(math.MaxInt32) {
			return 0, r.fail(ErrUnexpectedEndOfInput)
		}
		return int(n), nil
	}
}

// align skips padding up to a multiple of n from the buffer start.
func (r *Reader) align(n int) error {
	if mod := r.pos % n; mod != 0 {
		if _, err := r.take(n - mod); err != nil {
			return err
		}
	}
	return nil
}

// elements reads count*size bytes after aligning to size. The length is
// checked before any allocation so a hostile count cannot force one.
func (r *Reader) elements(size int) ([]byte, int, error) {
	n, err := r.ReadSize()
	if err != nil {
		return nil, 0, err
	}
	if err := r.align(size); err != nil {
		return nil, 0, err
	}
	if n > r.Len()/size {
		return nil, 0, r.fail(ErrUnexpectedEndOfInput)
	}
	b, err := r.take(n * size)
	return b, n, err
}

// ReadValue decodes the next value.
func (r *Reader) ReadValue() (Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch Kind(tag) {
	case KindNil:
		return Nil{}, nil
	case KindTrue:
		return Bool(true), nil
	case KindFalse:
		return Bool(false), nil
	case KindInt32:
		b, err := r.take(4)
		if err != nil {
			return nil, err
		}
		return Int32(int32(binary.LittleEndian.Uint32(b))), nil
	case KindInt64:
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return Int64(int64(binary.LittleEndian.Uint64(b))), nil
	case KindFloat64:
		if err := r.align(8); err != nil {
			return nil, err
		}
		b, err := r.take(8)
		if err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	case KindLargeInt, KindString:
		n, err := r.ReadSize()
		if err != nil {
			return nil, err
		}
		b, err := r.take(n)
		if err != nil {
			return nil, err
		}
		if Kind(tag) == KindLargeInt {
			return LargeInt(b), nil
		}
		return String(b), nil
	case KindUint8List:
		n, err := r.ReadSize()
		if err != nil {
			return nil, err
		}
		b, err := r.take(n)
		if err != nil {
			return nil, err
		}
		out := make(Uint8List, n)
		copy(out, b)
		return out, nil
	case KindInt32List:
		b, n, err := r.elements(4)
		if err != nil {
			return nil, err
		}
		out := make(Int32List, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
		}
		return out, nil
	case KindInt64List:
		b, n, err := r.elements(8)
		if err != nil {
			return nil, err
		}
		out := make(Int64List, n)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
		}
		return out, nil
	case KindFloat32List:
		b, n, err := r.elements(4)
		if err != nil {
			return nil, err
		}
		out := make(Float32List, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
		return out, nil
	case KindFloat64List:
		b, n, err := r.elements(8)
		if err != nil {
			return nil, err
		}
		out := make(Float64List, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		}
		return out, nil
	case KindList:
		return r.readList()
	case KindMap:
		return r.readMap()
	default:
		r.pos--
		return nil, r.fail(ErrInvalidTypeTag)
	}
}

// enter counts one level of List/Map nesting against MaxDepth. The
// caller decrements depth when the container is done.
func (r *Reader) enter() error {
	if r.depth >= MaxDepth {
		return r.fail(ErrMaxDepthExceeded)
	}
	r.depth++
	return nil
}

func (r *Reader) readList() (Value, error) {
	n, err := r.ReadSize()
	if err != nil {
		return nil, err
	}
	// Every element takes at least one byte.
	if n > r.Len() {
		return nil, r.fail(ErrUnexpectedEndOfInput)
	}
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer func() { r.depth-- }()

	out := make(List, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Reader) readMap() (Value, error) {
	n, err := r.ReadSize()
	if err != nil {
		return nil, err
	}
	if n > r.Len()/2 {
		return nil, r.fail(ErrUnexpectedEndOfInput)
	}
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer func() { r.depth-- }()

	out := make(Map, 0, n)
	for i := 0; i < n; i++ {
		k, err := r.ReadValue()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadValue()
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	return out, nil
}

// Writer accumulates an encoded buffer. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

var _ io.ByteWriter = (*Writer)(nil)

// WriteByte appends one raw byte. It never fails; the error result is the
// io.ByteWriter signature.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteSize appends a size prefix using the smallest width that fits.
func (w *Writer) WriteSize(n int) {
	switch {
	case n < sizeMarker16:
		w.buf = append(w.buf, byte(n))
	case n <= math.MaxUint16:
		w.buf = append(w.buf, sizeMarker16)
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(n))
	default:
		w.buf = append(w.buf, sizeMarker32)
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(n))
	}
}

func (w *Writer) align(n int) {
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

// WriteValue appends the encoding of v.
func (w *Writer) WriteValue(v Value) {
	if v == nil {
		v = Nil{}
	}
	w.buf = append(w.buf, byte(v.Kind()))
	switch t := v.(type) {
	case Nil, Bool:
	case Int32:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(t))
	case Int64:
		w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(t))
	case Float64:
		w.align(8)
		w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(float64(t)))
	case LargeInt:
		w.WriteSize(len(t))
		w.buf = append(w.buf, t...)
	case String:
		w.WriteSize(len(t))
		w.buf = append(w.buf, t...)
	case Uint8List:
		w.WriteSize(len(t))
		w.buf = append(w.buf, t...)
	case Int32List:
		w.WriteSize(len(t))
		w.align(4)
		for _, e := range t {
			w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(e))
		}
	case Int64List:
		w.WriteSize(len(t))
		w.align(8)
		for _, e := range t {
			w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(e))
		}
	case Float32List:
		w.WriteSize(len(t))
		w.align(4)
		for _, e := range t {
			w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(e))
		}
	case Float64List:
		w.WriteSize(len(t))
		w.align(8)
		for _, e := range t {
			w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(e))
		}
	case List:
		w.WriteSize(len(t))
		for _, e := range t {
			w.WriteValue(e)
		}
	case Map:
		w.WriteSize(len(t))
		for _, e := range t {
			w.WriteValue(e.Key)
			w.WriteValue(e.Value)
		}
	default:
		panic("codec: unsupported value type " + v.Kind().String())
	}
}
