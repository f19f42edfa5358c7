package keymap

import (
	"testing"
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/engine"
)

func mouse(typ gpucontext.PointerEventType, b gpucontext.Button, x, y float64) gpucontext.PointerEvent {
	return gpucontext.PointerEvent{
		Type:        typ,
		PointerID:   1,
		X:           x,
		Y:           y,
		PointerType: gpucontext.PointerTypeMouse,
		Button:      b,
		Timestamp:   time.Millisecond,
	}
}

func phases(events []engine.PointerEvent) []engine.PointerPhase {
	out := make([]engine.PointerPhase, len(events))
	for i, e := range events {
		out[i] = e.Phase
	}
	return out
}

func equalPhases(a, b []engine.PointerPhase) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTrackerSequence(t *testing.T) {
	tr := NewTracker()
	tr.Scale = 2

	steps := []struct {
		name    string
		ev      gpucontext.PointerEvent
		want    []engine.PointerPhase
		buttons int64
	}{
		{"first move adds", mouse(gpucontext.PointerMove, gpucontext.ButtonNone, 5, 6), []engine.PointerPhase{engine.PointerAdd, engine.PointerHover}, 0},
		{"hover", mouse(gpucontext.PointerMove, gpucontext.ButtonNone, 6, 6), []engine.PointerPhase{engine.PointerHover}, 0},
		{"press left", mouse(gpucontext.PointerDown, gpucontext.ButtonLeft, 6, 6), []engine.PointerPhase{engine.PointerDown}, engine.ButtonPrimary},
		{"press right", mouse(gpucontext.PointerDown, gpucontext.ButtonRight, 6, 6), []engine.PointerPhase{engine.PointerMove}, engine.ButtonPrimary | engine.ButtonSecondary},
		{"drag", mouse(gpucontext.PointerMove, gpucontext.ButtonNone, 7, 6), []engine.PointerPhase{engine.PointerMove}, engine.ButtonPrimary | engine.ButtonSecondary},
		{"release left", mouse(gpucontext.PointerUp, gpucontext.ButtonLeft, 7, 6), []engine.PointerPhase{engine.PointerMove}, engine.ButtonSecondary},
		{"release right", mouse(gpucontext.PointerUp, gpucontext.ButtonRight, 7, 6), []engine.PointerPhase{engine.PointerUp}, 0},
		{"leave", mouse(gpucontext.PointerLeave, gpucontext.ButtonNone, 7, 6), []engine.PointerPhase{engine.PointerRemove}, 0},
	}
	for _, s := range steps {
		got := tr.Pointer(s.ev)
		if !equalPhases(phases(got), s.want) {
			t.Fatalf("%s: phases = %v, want %v", s.name, phases(got), s.want)
		}
		last := got[len(got)-1]
		if last.Buttons != s.buttons {
			t.Errorf("%s: buttons = %d, want %d", s.name, last.Buttons, s.buttons)
		}
		if last.Device != 1 {
			t.Errorf("%s: device = %d, want 1", s.name, last.Device)
		}
		if last.X != s.ev.X*2 || last.Y != s.ev.Y*2 {
			t.Errorf("%s: position = (%v,%v), want scaled by 2", s.name, last.X, last.Y)
		}
		if last.Timestamp != 1000 {
			t.Errorf("%s: timestamp = %d, want 1000", s.name, last.Timestamp)
		}
	}
	if tr.Devices() != 0 {
		t.Errorf("Devices() = %d after leave, want 0", tr.Devices())
	}
}

func TestTrackerDeviceIDs(t *testing.T) {
	tr := NewTracker()
	touch := gpucontext.PointerEvent{Type: gpucontext.PointerDown, PointerID: 7, PointerType: gpucontext.PointerTypeTouch, Button: gpucontext.ButtonLeft}

	a := tr.Pointer(mouse(gpucontext.PointerMove, gpucontext.ButtonNone, 0, 0))
	b := tr.Pointer(touch)
	if a[0].Device != 1 || b[0].Device != 2 {
		t.Fatalf("devices = %d, %d, want 1, 2", a[0].Device, b[0].Device)
	}
	if b[0].DeviceKind != engine.DeviceTouch {
		t.Errorf("DeviceKind = %d, want touch", b[0].DeviceKind)
	}

	tr.Pointer(mouse(gpucontext.PointerLeave, gpucontext.ButtonNone, 0, 0))
	c := tr.Pointer(mouse(gpucontext.PointerEnter, gpucontext.ButtonNone, 0, 0))
	if len(c) != 1 || c[0].Phase != engine.PointerAdd || c[0].Device != 3 {
		t.Errorf("re-entry = %+v, want a single add for device 3", c)
	}
}

func TestTrackerLeaveWhilePressed(t *testing.T) {
	tr := NewTracker()
	tr.Pointer(mouse(gpucontext.PointerDown, gpucontext.ButtonLeft, 1, 1))
	got := tr.Pointer(mouse(gpucontext.PointerLeave, gpucontext.ButtonNone, 1, 1))
	want := []engine.PointerPhase{engine.PointerCancel, engine.PointerRemove}
	if !equalPhases(phases(got), want) {
		t.Errorf("phases = %v, want %v", phases(got), want)
	}
}

func TestTrackerLeaveUnknown(t *testing.T) {
	if got := NewTracker().Pointer(mouse(gpucontext.PointerLeave, gpucontext.ButtonNone, 0, 0)); len(got) != 0 {
		t.Errorf("leave for unknown device = %v, want nothing", got)
	}
}

func TestTrackerScroll(t *testing.T) {
	tests := []struct {
		name   string
		mode   gpucontext.ScrollDeltaMode
		dx, dy float64
		wantX  float64
		wantY  float64
	}{
		{"pixels", gpucontext.ScrollDeltaPixel, 3, -4, 6, -8},
		{"lines", gpucontext.ScrollDeltaLine, 0, 3, 0, 30},
		{"pages", gpucontext.ScrollDeltaPage, 0, 1, 0, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Scale = 2
			tr.PageHeight = 600
			tr.Pointer(mouse(gpucontext.PointerMove, gpucontext.ButtonNone, 0, 0))

			got := tr.Scroll(gpucontext.ScrollEvent{X: 10, Y: 20, DeltaX: tt.dx, DeltaY: tt.dy, DeltaMode: tt.mode})
			if len(got) != 1 {
				t.Fatalf("Scroll() = %d events, want 1", len(got))
			}
			e := got[0]
			if e.SignalKind != engine.SignalScroll || e.Phase != engine.PointerHover {
				t.Errorf("Scroll() = %v/%d, want hover with scroll signal", e.Phase, e.SignalKind)
			}
			if e.ScrollDeltaX != tt.wantX || e.ScrollDeltaY != tt.wantY {
				t.Errorf("deltas = (%v,%v), want (%v,%v)", e.ScrollDeltaX, e.ScrollDeltaY, tt.wantX, tt.wantY)
			}
			if e.X != 20 || e.Y != 40 || e.Device != 1 {
				t.Errorf("Scroll() at (%v,%v) device %d, want (20,40) device 1", e.X, e.Y, e.Device)
			}
		})
	}
}

func TestTrackerClock(t *testing.T) {
	tr := NewTracker()
	tr.Now = func() uint64 { return 5_000_000 }
	ev := mouse(gpucontext.PointerMove, gpucontext.ButtonNone, 0, 0)
	ev.Timestamp = 0
	if got := tr.Pointer(ev); got[0].Timestamp != 5000 {
		t.Errorf("Timestamp = %d, want 5000", got[0].Timestamp)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Pointer(mouse(gpucontext.PointerMove, gpucontext.ButtonNone, 0, 0))
	got := tr.Reset()
	if len(got) != 1 || got[0].Phase != engine.PointerRemove {
		t.Errorf("Reset() = %v, want one remove", phases(got))
	}
	if tr.Devices() != 0 {
		t.Errorf("Devices() = %d, want 0", tr.Devices())
	}
}

func TestMouseButton(t *testing.T) {
	tests := []struct {
		b    gpucontext.MouseButton
		want int64
	}{
		{gpucontext.MouseButtonLeft, engine.ButtonPrimary},
		{gpucontext.MouseButtonRight, engine.ButtonSecondary},
		{gpucontext.MouseButtonMiddle, engine.ButtonMiddle},
		{gpucontext.MouseButton4, engine.ButtonBack},
		{gpucontext.MouseButton5, engine.ButtonForward},
	}
	for _, tt := range tests {
		if got := buttonBit(MouseButton(tt.b), gpucontext.PointerTypeMouse); got != tt.want {
			t.Errorf("buttonBit(MouseButton(%d)) = %d, want %d", tt.b, got, tt.want)
		}
	}
}
