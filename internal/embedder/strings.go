package embedder

import "unsafe"

// cstr returns a NUL-terminated copy of s.
func cstr(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// cstrOrNil maps the empty string to NULL.
func cstrOrNil(s string) *byte {
	if s == "" {
		return nil
	}
	return cstr(s)
}

// cstrArray returns a NULL-terminated array of C strings and the number of
// entries before the terminator.
func cstrArray(ss []string) (**byte, int) {
	if len(ss) == 0 {
		return nil, 0
	}
	arr := make([]*byte, len(ss)+1)
	for i, s := range ss {
		arr[i] = cstr(s)
	}
	return &arr[0], len(ss)
}

// goString copies the NUL-terminated string at p.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(p + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}

// goBytes copies n bytes at p. The result is nil when n is zero.
func goBytes(p uintptr, n uintptr) []byte {
	if p == 0 || n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
	return out
}
