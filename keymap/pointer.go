package keymap

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/engine"
)

// DefaultLinePixels is the scroll distance of one wheel line.
const DefaultLinePixels = 10

type device struct {
	id      int32
	kind    engine.PointerDeviceKind
	buttons int64
	x, y    float64
}

// Tracker turns host pointer samples into engine pointer events. It keeps
// one virtual device per host pointer id, numbered from 1 in order of first
// appearance. A Tracker is not safe for concurrent use.
type Tracker struct {
	// Scale converts host logical coordinates to physical pixels.
	Scale float64
	// LinePixels is the distance of one line-mode scroll step.
	LinePixels float64
	// PageHeight is the distance of one page-mode scroll step, normally the
	// viewport height in physical pixels.
	PageHeight float64
	// ViewID is stamped on every event.
	ViewID int64
	// Now returns the engine clock in nanoseconds. It is used when a sample
	// carries no timestamp.
	Now func() uint64

	next    int32
	devices map[int]*device
	mouse   int // host id of the last mouse sample
}

// NewTracker returns a Tracker with unit scale and the default line step.
func NewTracker() *Tracker {
	return &Tracker{
		Scale:      1,
		LinePixels: DefaultLinePixels,
		next:       1,
		devices:    make(map[int]*device),
	}
}

// Devices returns the number of devices currently known.
func (t *Tracker) Devices() int { return len(t.devices) }

// Pointer translates one pointer sample.
func (t *Tracker) Pointer(ev gpucontext.PointerEvent) []engine.PointerEvent {
	x, y := ev.X*t.Scale, ev.Y*t.Scale
	ts := t.stamp(uint64(ev.Timestamp.Microseconds()))

	if ev.Type == gpucontext.PointerLeave {
		d, ok := t.devices[ev.PointerID]
		if !ok {
			return nil
		}
		delete(t.devices, ev.PointerID)
		out := make([]engine.PointerEvent, 0, 2)
		if d.buttons != 0 {
			out = append(out, t.event(d, engine.PointerCancel, ts, x, y))
			d.buttons = 0
		}
		return append(out, t.event(d, engine.PointerRemove, ts, x, y))
	}

	d, out := t.lookup(ev.PointerID, deviceKind(ev.PointerType), ts, x, y)
	d.x, d.y = x, y
	if ev.PointerType == gpucontext.PointerTypeMouse {
		t.mouse = ev.PointerID
	}

	switch ev.Type {
	case gpucontext.PointerDown:
		prev := d.buttons
		d.buttons |= buttonBit(ev.Button, ev.PointerType)
		phase := engine.PointerMove
		if prev == 0 {
			phase = engine.PointerDown
		}
		out = append(out, t.event(d, phase, ts, x, y))
	case gpucontext.PointerUp:
		d.buttons &^= buttonBit(ev.Button, ev.PointerType)
		phase := engine.PointerMove
		if d.buttons == 0 {
			phase = engine.PointerUp
		}
		out = append(out, t.event(d, phase, ts, x, y))
	case gpucontext.PointerCancel:
		d.buttons = 0
		out = append(out, t.event(d, engine.PointerCancel, ts, x, y))
	case gpucontext.PointerEnter:
		// Add, if any, already emitted.
	default:
		out = append(out, t.motion(d, ts, x, y))
	}
	return out
}

// Scroll translates a wheel or trackpad scroll sample. It is attributed to
// the most recently seen mouse.
func (t *Tracker) Scroll(ev gpucontext.ScrollEvent) []engine.PointerEvent {
	x, y := ev.X*t.Scale, ev.Y*t.Scale
	ts := t.stamp(uint64(ev.Timestamp.Microseconds()))
	d, out := t.lookup(t.mouse, engine.DeviceMouse, ts, x, y)
	d.x, d.y = x, y

	var step float64
	switch ev.DeltaMode {
	case gpucontext.ScrollDeltaLine:
		step = t.LinePixels
	case gpucontext.ScrollDeltaPage:
		step = t.PageHeight
	default:
		step = t.Scale
	}
	e := t.motion(d, ts, x, y)
	e.SignalKind = engine.SignalScroll
	e.ScrollDeltaX = ev.DeltaX * step
	e.ScrollDeltaY = ev.DeltaY * step
	return append(out, e)
}

// Reset forgets every device, emitting Remove for each.
func (t *Tracker) Reset() []engine.PointerEvent {
	ts := t.stamp(0)
	out := make([]engine.PointerEvent, 0, len(t.devices))
	for id, d := range t.devices {
		out = append(out, t.event(d, engine.PointerRemove, ts, d.x, d.y))
		delete(t.devices, id)
	}
	return out
}

func (t *Tracker) lookup(hostID int, kind engine.PointerDeviceKind, ts uint64, x, y float64) (*device, []engine.PointerEvent) {
	if d, ok := t.devices[hostID]; ok {
		return d, nil
	}
	if t.devices == nil {
		t.devices = make(map[int]*device)
	}
	if t.next == 0 {
		t.next = 1
	}
	d := &device{id: t.next, kind: kind, x: x, y: y}
	t.next++
	t.devices[hostID] = d
	return d, []engine.PointerEvent{t.event(d, engine.PointerAdd, ts, x, y)}
}

func (t *Tracker) motion(d *device, ts uint64, x, y float64) engine.PointerEvent {
	if d.buttons == 0 {
		return t.event(d, engine.PointerHover, ts, x, y)
	}
	return t.event(d, engine.PointerMove, ts, x, y)
}

func (t *Tracker) event(d *device, phase engine.PointerPhase, ts uint64, x, y float64) engine.PointerEvent {
	return engine.PointerEvent{
		Phase:      phase,
		Timestamp:  ts,
		X:          x,
		Y:          y,
		Device:     d.id,
		DeviceKind: d.kind,
		Buttons:    d.buttons,
		ViewID:     t.ViewID,
	}
}

// stamp returns micros, or the engine clock in microseconds when zero.
func (t *Tracker) stamp(micros uint64) uint64 {
	if micros != 0 || t.Now == nil {
		return micros
	}
	return t.Now() / 1000
}

func deviceKind(p gpucontext.PointerType) engine.PointerDeviceKind {
	switch p {
	case gpucontext.PointerTypeTouch:
		return engine.DeviceTouch
	case gpucontext.PointerTypePen:
		return engine.DeviceStylus
	default:
		return engine.DeviceMouse
	}
}

// buttonBit returns the engine button bit for b. Touch and pen contacts
// report as the primary button.
func buttonBit(b gpucontext.Button, p gpucontext.PointerType) int64 {
	switch b {
	case gpucontext.ButtonLeft:
		return engine.ButtonPrimary
	case gpucontext.ButtonRight:
		return engine.ButtonSecondary
	case gpucontext.ButtonMiddle:
		return engine.ButtonMiddle
	case gpucontext.ButtonX1:
		return engine.ButtonBack
	case gpucontext.ButtonX2:
		return engine.ButtonForward
	}
	if p != gpucontext.PointerTypeMouse {
		return engine.ButtonPrimary
	}
	return 0
}

// MouseButton converts a legacy mouse callback button to the pointer event
// button, so mouse-only hosts can feed a Tracker.
func MouseButton(b gpucontext.MouseButton) gpucontext.Button {
	switch b {
	case gpucontext.MouseButtonLeft:
		return gpucontext.ButtonLeft
	case gpucontext.MouseButtonRight:
		return gpucontext.ButtonRight
	case gpucontext.MouseButtonMiddle:
		return gpucontext.ButtonMiddle
	case gpucontext.MouseButton4:
		return gpucontext.ButtonX1
	case gpucontext.MouseButton5:
		return gpucontext.ButtonX2
	default:
		return gpucontext.ButtonNone
	}
}
