// Package codec implements the message encodings spoken on Flutter
// platform channels.
//
// # Standard encoding
//
// The standard binary format is a self-describing tree of tagged values:
//
//	tag  kind              payload
//	0    Nil               -
//	1    Bool(true)        -
//	2    Bool(false)       -
//	3    Int32             4 bytes LE
//	4    Int64             8 bytes LE
//	5    LargeInt          size + ASCII hex
//	6    Float64           align 8, 8 bytes LE
//	7    String            size + UTF-8
//	8    Uint8List         size + bytes
//	9    Int32List         size, align 4, elements
//	10   Int64List         size, align 8, elements
//	11   Float64List       size, align 8, elements
//	12   List              size + values
//	13   Map               size + key/value pairs
//	14   Float32List       size, align 4, elements
//
// Sizes below 254 take one byte; 254 is followed by a uint16 and 255 by a
// uint32. Alignment padding is relative to the start of the buffer.
//
// # Method codecs
//
// Method channels wrap calls and replies in envelopes. StandardMethodCodec
// uses the binary format and JSONMethodCodec the JSON one; both decode into
// the same Value model so handlers do not care which channel they serve.
package codec
