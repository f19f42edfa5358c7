// Package keymap translates host input into the engine's vocabulary: USB
// HID physical key codes, Flutter logical key codes and pointer events
// with per-device state.
package keymap

import (
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/gpucontext"
)

// Logical key planes.
const (
	unicodePlane = 0x00000000000
	unprintable  = 0x00100000000
	synonyms     = 0x00200000000
)

const hidPage = 0x00070000

var physical = map[gpucontext.Key]uint64{
	gpucontext.KeyEnter:        0x28,
	gpucontext.KeyEscape:       0x29,
	gpucontext.KeyBackspace:    0x2a,
	gpucontext.KeyTab:          0x2b,
	gpucontext.KeySpace:        0x2c,
	gpucontext.KeyMinus:        0x2d,
	gpucontext.KeyEqual:        0x2e,
	gpucontext.KeyLeftBracket:  0x2f,
	gpucontext.KeyRightBracket: 0x30,
	gpucontext.KeyBackslash:    0x31,
	gpucontext.KeySemicolon:    0x33,
	gpucontext.KeyApostrophe:   0x34,
	gpucontext.KeyGrave:        0x35,
	gpucontext.KeyComma:        0x36,
	gpucontext.KeyPeriod:       0x37,
	gpucontext.KeySlash:        0x38,
	gpucontext.KeyCapsLock:     0x39,
	gpucontext.KeyPrintScreen:  0x46,
	gpucontext.KeyScrollLock:   0x47,
	gpucontext.KeyPause:        0x48,
	gpucontext.KeyInsert:       0x49,
	gpucontext.KeyHome:         0x4a,
	gpucontext.KeyPageUp:       0x4b,
	gpucontext.KeyDelete:       0x4c,
	gpucontext.KeyEnd:          0x4d,
	gpucontext.KeyPageDown:     0x4e,
	gpucontext.KeyRight:        0x4f,
	gpucontext.KeyLeft:         0x50,
	gpucontext.KeyDown:         0x51,
	gpucontext.KeyUp:           0x52,
	gpucontext.KeyNumLock:      0x53,

	gpucontext.KeyNumpadDivide:   0x54,
	gpucontext.KeyNumpadMultiply: 0x55,
	gpucontext.KeyNumpadSubtract: 0x56,
	gpucontext.KeyNumpadAdd:      0x57,
	gpucontext.KeyNumpadEnter:    0x58,
	gpucontext.KeyNumpad1:        0x59,
	gpucontext.KeyNumpad2:        0x5a,
	gpucontext.KeyNumpad3:        0x5b,
	gpucontext.KeyNumpad4:        0x5c,
	gpucontext.KeyNumpad5:        0x5d,
	gpucontext.KeyNumpad6:        0x5e,
	gpucontext.KeyNumpad7:        0x5f,
	gpucontext.KeyNumpad8:        0x60,
	gpucontext.KeyNumpad9:        0x61,
	gpucontext.KeyNumpad0:        0x62,
	gpucontext.KeyNumpadDecimal:  0x63,

	gpucontext.KeyLeftControl:  0xe0,
	gpucontext.KeyLeftShift:    0xe1,
	gpucontext.KeyLeftAlt:      0xe2,
	gpucontext.KeyLeftSuper:    0xe3,
	gpucontext.KeyRightControl: 0xe4,
	gpucontext.KeyRightShift:   0xe5,
	gpucontext.KeyRightAlt:     0xe6,
	gpucontext.KeyRightSuper:   0xe7,
}

var named = map[gpucontext.Key]uint64{
	gpucontext.KeyBackspace:   unprintable | 0x008,
	gpucontext.KeyTab:         unprintable | 0x009,
	gpucontext.KeyEnter:       unprintable | 0x00d,
	gpucontext.KeyEscape:      unprintable | 0x01b,
	gpucontext.KeyDelete:      unprintable | 0x07f,
	gpucontext.KeyCapsLock:    unprintable | 0x104,
	gpucontext.KeyNumLock:     unprintable | 0x10a,
	gpucontext.KeyScrollLock:  unprintable | 0x10c,
	gpucontext.KeyDown:        unprintable | 0x301,
	gpucontext.KeyLeft:        unprintable | 0x302,
	gpucontext.KeyRight:       unprintable | 0x303,
	gpucontext.KeyUp:          unprintable | 0x304,
	gpucontext.KeyEnd:         unprintable | 0x305,
	gpucontext.KeyHome:        unprintable | 0x306,
	gpucontext.KeyPageDown:    unprintable | 0x307,
	gpucontext.KeyPageUp:      unprintable | 0x308,
	gpucontext.KeyInsert:      unprintable | 0x407,
	gpucontext.KeyPause:       unprintable | 0x509,
	gpucontext.KeyPrintScreen: unprintable | 0x608,

	gpucontext.KeyLeftControl:  synonyms | 0x100,
	gpucontext.KeyRightControl: synonyms | 0x101,
	gpucontext.KeyLeftShift:    synonyms | 0x102,
	gpucontext.KeyRightShift:   synonyms | 0x103,
	gpucontext.KeyLeftAlt:      synonyms | 0x104,
	gpucontext.KeyRightAlt:     synonyms | 0x105,
	gpucontext.KeyLeftSuper:    synonyms | 0x106,
	gpucontext.KeyRightSuper:   synonyms | 0x107,

	gpucontext.KeyNumpadEnter:    synonyms | 0x20d,
	gpucontext.KeyNumpadMultiply: synonyms | 0x22a,
	gpucontext.KeyNumpadAdd:      synonyms | 0x22b,
	gpucontext.KeyNumpadSubtract: synonyms | 0x22d,
	gpucontext.KeyNumpadDecimal:  synonyms | 0x22e,
	gpucontext.KeyNumpadDivide:   synonyms | 0x22f,
}

var printable = map[gpucontext.Key]rune{
	gpucontext.KeySpace:        ' ',
	gpucontext.KeyMinus:        '-',
	gpucontext.KeyEqual:        '=',
	gpucontext.KeyLeftBracket:  '[',
	gpucontext.KeyRightBracket: ']',
	gpucontext.KeyBackslash:    '\\',
	gpucontext.KeySemicolon:    ';',
	gpucontext.KeyApostrophe:   '\'',
	gpucontext.KeyGrave:        '`',
	gpucontext.KeyComma:        ',',
	gpucontext.KeyPeriod:       '.',
	gpucontext.KeySlash:        '/',
}

// shifted holds the US layout characters of non-letter keys with Shift.
var shifted = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
	'-': '_', '=': '+', '[': '{', ']': '}', '\\': '|',
	';': ':', '\'': '"', '`': '~', ',': '<', '.': '>', '/': '?',
}

func init() {
	for i := gpucontext.KeyA; i <= gpucontext.KeyZ; i++ {
		physical[i] = 0x04 + uint64(i-gpucontext.KeyA)
		printable[i] = 'a' + rune(i-gpucontext.KeyA)
	}
	// HID orders 1..9 then 0.
	physical[gpucontext.Key0] = 0x27
	printable[gpucontext.Key0] = '0'
	for i := gpucontext.Key1; i <= gpucontext.Key9; i++ {
		physical[i] = 0x1e + uint64(i-gpucontext.Key1)
		printable[i] = '1' + rune(i-gpucontext.Key1)
	}
	for i := gpucontext.KeyF1; i <= gpucontext.KeyF12; i++ {
		physical[i] = 0x3a + uint64(i-gpucontext.KeyF1)
		named[i] = unprintable | (0x801 + uint64(i-gpucontext.KeyF1))
	}
	for i := gpucontext.KeyNumpad0; i <= gpucontext.KeyNumpad9; i++ {
		named[i] = synonyms | (0x230 + uint64(i-gpucontext.KeyNumpad0))
	}
}

// Physical returns the USB HID usage of k.
func Physical(k gpucontext.Key) (uint64, bool) {
	code, ok := physical[k]
	if !ok {
		return 0, false
	}
	return hidPage | code, true
}

// Logical returns the Flutter logical key of k. Keys that produce a
// character use its code point, lower-cased for letters; text overrides
// the table when it is a single printable rune.
func Logical(k gpucontext.Key, text string) (uint64, bool) {
	if code, ok := named[k]; ok {
		return code, true
	}
	if r, size := utf8.DecodeRuneInString(text); size > 0 && size == len(text) && unicode.IsPrint(r) {
		return unicodePlane | uint64(unicode.ToLower(r)), true
	}
	if r, ok := printable[k]; ok {
		return unicodePlane | uint64(r), true
	}
	return 0, false
}

// Character returns the text k produces with mods held on a US layout, or
// "" for keys that produce none. Control and Super chords produce none.
func Character(k gpucontext.Key, mods gpucontext.Modifiers) string {
	r, ok := printable[k]
	if !ok || mods.HasControl() || mods.HasSuper() {
		return ""
	}
	if mods.HasShift() {
		if s, ok := shifted[r]; ok {
			r = s
		} else {
			r = unicode.ToUpper(r)
		}
	}
	return string(r)
}
