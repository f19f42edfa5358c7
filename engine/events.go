package engine

// WindowMetrics reports the view geometry in physical pixels.
type WindowMetrics struct {
	Width, Height uint64
	PixelRatio    float64
	Left, Top     uint64
	ViewID        int64
	DisplayID     uint64
}

// PointerPhase is the engine's pointer phase enumeration.
type PointerPhase int32

const (
	PointerCancel PointerPhase = iota
	PointerUp
	PointerDown
	PointerMove
	PointerAdd
	PointerRemove
	PointerHover
)

func (p PointerPhase) String() string {
	switch p {
	case PointerCancel:
		return "cancel"
	case PointerUp:
		return "up"
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerAdd:
		return "add"
	case PointerRemove:
		return "remove"
	case PointerHover:
		return "hover"
	default:
		return "unknown"
	}
}

// PointerSignalKind distinguishes discrete pointer signals.
type PointerSignalKind int32

const (
	SignalNone PointerSignalKind = iota
	SignalScroll
)

// PointerDeviceKind is the kind of device producing pointer events.
type PointerDeviceKind int32

const (
	DeviceMouse PointerDeviceKind = iota + 1
	DeviceTouch
	DeviceStylus
	DeviceTrackpad
)

// Mouse button bits carried in PointerEvent.Buttons.
const (
	ButtonPrimary   int64 = 1 << 0
	ButtonSecondary int64 = 1 << 1
	ButtonMiddle    int64 = 1 << 2
	ButtonBack      int64 = 1 << 3
	ButtonForward   int64 = 1 << 4
)

// PointerEvent is one pointer sample. Timestamp is in microseconds.
type PointerEvent struct {
	Phase        PointerPhase
	Timestamp    uint64
	X, Y         float64
	Device       int32
	SignalKind   PointerSignalKind
	ScrollDeltaX float64
	ScrollDeltaY float64
	DeviceKind   PointerDeviceKind
	Buttons      int64
	ViewID       int64
}

// KeyEventType is the engine's key transition kind.
type KeyEventType int32

const (
	KeyUp KeyEventType = iota + 1
	KeyDown
	KeyRepeat
)

func (t KeyEventType) String() string {
	switch t {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// KeyEventTypeOf maps a key transition to its engine kind.
func KeyEventTypeOf(pressed, repeat bool) KeyEventType {
	switch {
	case !pressed:
		return KeyUp
	case repeat:
		return KeyRepeat
	default:
		return KeyDown
	}
}

// KeyEvent is a key transition. Timestamp is in microseconds. Character is
// empty for releases.
type KeyEvent struct {
	Timestamp   float64
	Type        KeyEventType
	Physical    uint64
	Logical     uint64
	Character   string
	Synthesized bool
}

// Locale is a BCP 47 locale split into the parts the engine accepts.
type Locale struct {
	LanguageCode string
	CountryCode  string
	ScriptCode   string
	VariantCode  string
}

// Display describes a monitor for NotifyDisplayUpdate.
type Display struct {
	ID               uint64
	Single           bool
	RefreshRate      float64
	Width, Height    uint64
	DevicePixelRatio float64
}

// ResponseHandle identifies the engine-side reply slot of a platform
// message. The zero value means no reply is expected.
type ResponseHandle uintptr

// PlatformMessage is a message received from the engine. Message is owned
// by the receiver.
type PlatformMessage struct {
	Channel  string
	Message  []byte
	Response ResponseHandle
}

// Task is an engine task handed to the host for later execution.
type Task struct {
	Runner uintptr
	ID     uint64
}
