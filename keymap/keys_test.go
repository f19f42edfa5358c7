package keymap

import (
	"testing"

	"github.com/gogpu/gpucontext"
)

func TestPhysical(t *testing.T) {
	tests := []struct {
		key  gpucontext.Key
		want uint64
	}{
		{gpucontext.KeyA, 0x00070004},
		{gpucontext.KeyZ, 0x0007001d},
		{gpucontext.Key1, 0x0007001e},
		{gpucontext.Key9, 0x00070026},
		{gpucontext.Key0, 0x00070027},
		{gpucontext.KeyEnter, 0x00070028},
		{gpucontext.KeySpace, 0x0007002c},
		{gpucontext.KeyF1, 0x0007003a},
		{gpucontext.KeyF12, 0x00070045},
		{gpucontext.KeyLeft, 0x00070050},
		{gpucontext.KeyNumpad0, 0x00070062},
		{gpucontext.KeyNumpad1, 0x00070059},
		{gpucontext.KeyLeftControl, 0x000700e0},
		{gpucontext.KeyRightSuper, 0x000700e7},
	}
	for _, tt := range tests {
		got, ok := Physical(tt.key)
		if !ok || got != tt.want {
			t.Errorf("Physical(%v) = %#x, %v, want %#x", tt.key, got, ok, tt.want)
		}
	}
	if _, ok := Physical(gpucontext.KeyUnknown); ok {
		t.Error("Physical(KeyUnknown) should not map")
	}
}

func TestLogical(t *testing.T) {
	tests := []struct {
		name string
		key  gpucontext.Key
		text string
		want uint64
	}{
		{"letter", gpucontext.KeyA, "", 0x61},
		{"shifted letter", gpucontext.KeyA, "A", 0x61},
		{"digit", gpucontext.Key0, "", 0x30},
		{"shifted digit", gpucontext.Key1, "!", 0x21},
		{"space", gpucontext.KeySpace, " ", 0x20},
		{"layout text", gpucontext.KeyQ, "é", 0xe9},
		{"enter", gpucontext.KeyEnter, "\r", 0x10000000d},
		{"escape", gpucontext.KeyEscape, "", 0x10000001b},
		{"arrow", gpucontext.KeyLeft, "", 0x100000302},
		{"f1", gpucontext.KeyF1, "", 0x100000801},
		{"f12", gpucontext.KeyF12, "", 0x10000080c},
		{"shift", gpucontext.KeyLeftShift, "", 0x200000102},
		{"right meta", gpucontext.KeyRightSuper, "", 0x200000107},
		{"numpad digit", gpucontext.KeyNumpad7, "7", 0x200000237},
		{"numpad enter", gpucontext.KeyNumpadEnter, "", 0x20000020d},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Logical(tt.key, tt.text)
			if !ok || got != tt.want {
				t.Errorf("Logical(%v, %q) = %#x, %v, want %#x", tt.key, tt.text, got, ok, tt.want)
			}
		})
	}
	if _, ok := Logical(gpucontext.KeyUnknown, ""); ok {
		t.Error("Logical(KeyUnknown, \"\") should not map")
	}
}

func TestCharacter(t *testing.T) {
	tests := []struct {
		key  gpucontext.Key
		mods gpucontext.Modifiers
		want string
	}{
		{gpucontext.KeyA, 0, "a"},
		{gpucontext.KeyA, gpucontext.ModShift, "A"},
		{gpucontext.Key0, 0, "0"},
		{gpucontext.Key2, gpucontext.ModShift, "@"},
		{gpucontext.KeySlash, gpucontext.ModShift, "?"},
		{gpucontext.KeySpace, 0, " "},
		{gpucontext.KeyA, gpucontext.ModControl, ""},
		{gpucontext.KeyC, gpucontext.ModSuper, ""},
		{gpucontext.KeyEnter, 0, ""},
		{gpucontext.KeyF1, 0, ""},
	}
	for _, tt := range tests {
		if got := Character(tt.key, tt.mods); got != tt.want {
			t.Errorf("Character(%v, %v) = %q, want %q", tt.key, tt.mods, got, tt.want)
		}
	}
}
