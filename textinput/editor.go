package textinput

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/codec"
)

// Channel is the platform channel carrying text input traffic. It uses
// codec.JSONMethodCodec.
const Channel = "flutter/textinput"

// Input actions referenced by the editor.
const (
	ActionDone     = "TextInputAction.done"
	ActionNext     = "TextInputAction.next"
	ActionPrevious = "TextInputAction.previous"
)

const (
	methodUpdateEditingState = "TextInputClient.updateEditingState"
	methodPerformAction      = "TextInputClient.performAction"
)

// ErrBadArguments reports a TextInput call whose arguments have the wrong shape.
var ErrBadArguments = errors.New("textinput: bad arguments")

// Sender delivers method calls to the engine on Channel.
type Sender interface {
	SendTextInput(call codec.MethodCall)
}

// Clipboard is the subset of gpucontext.PlatformProvider the editor uses.
type Clipboard interface {
	ClipboardRead() (string, error)
	ClipboardWrite(text string) error
}

// KeyEvent is a key transition as seen by the editor. Text holds the
// characters the key produced, if any; text-only events use KeyUnknown.
type KeyEvent struct {
	Key      gpucontext.Key
	Mods     gpucontext.Modifiers
	Text     string
	Released bool
}

// Rect is an axis-aligned rectangle in the editable's coordinate space.
type Rect struct {
	X, Y, Width, Height float64
}

// Option configures an Editor.
type Option func(*Editor)

// WithIME lets the editor position the IME candidate window and toggle IME
// for obscured fields.
func WithIME(ime gpucontext.IMEController) Option {
	return func(e *Editor) { e.ime = ime }
}

// Editor is the text editing state machine for the single focused field.
// It is Detached until TextInput.setClient and returns to Detached on
// TextInput.clearClient. All methods must be called on the UI thread.
type Editor struct {
	out  Sender
	clip Clipboard
	ime  gpucontext.IMEController

	attached bool
	client   int64
	action   string
	value    Value
	visible  bool

	size      [2]float64
	transform [16]float64
	caret     Rect
}

// New returns a detached Editor.
func New(out Sender, clip Clipboard, opts ...Option) *Editor {
	e := &Editor{
		out:       out,
		clip:      clip,
		value:     Empty(),
		transform: identity(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Value returns the current editing value.
func (e *Editor) Value() Value { return e.value }

// SetValue replaces the editing value without notifying the engine.
func (e *Editor) SetValue(v Value) { e.value = v }

// Client returns the attached client id.
func (e *Editor) Client() (int64, bool) { return e.client, e.attached }

// Action returns the submit action requested by the attached client.
func (e *Editor) Action() string { return e.action }

// Visible reports whether the engine asked for the keyboard to be shown.
func (e *Editor) Visible() bool { return e.visible }

// CaretRect returns the last caret rectangle reported by the engine.
func (e *Editor) CaretRect() Rect { return e.caret }

// HandleMethodCall applies a TextInput.* call from the engine and returns
// the result to send back. Unknown methods return
// codec.ErrMethodNotImplemented.
func (e *Editor) HandleMethodCall(call codec.MethodCall) (codec.Value, error) {
	switch call.Method {
	case "TextInput.setClient":
		return codec.Nil{}, e.setClient(call.Args)
	case "TextInput.clearClient":
		slogger().Debug("textinput: client cleared", "client", e.client)
		e.attached = false
		e.client = 0
		e.action = ""
		e.value = Empty()
		if e.ime != nil {
			e.ime.SetIMEEnabled(false)
		}
		return codec.Nil{}, nil
	case "TextInput.setEditingState":
		v, err := FromCodec(call.Args)
		if err != nil {
			return nil, err
		}
		slogger().Debug("textinput: set editing state", "value", v)
		e.value = v
		return codec.Nil{}, nil
	case "TextInput.show":
		e.visible = true
		return codec.Nil{}, nil
	case "TextInput.hide":
		e.visible = false
		return codec.Nil{}, nil
	case "TextInput.setEditableSizeAndTransform":
		return codec.Nil{}, e.setEditableSizeAndTransform(call.Args)
	case "TextInput.setCaretRect", "TextInput.setMarkedTextRect":
		r, err := parseRect(call.Args)
		if err != nil {
			return nil, err
		}
		e.caret = r
		e.positionIME()
		return codec.Nil{}, nil
	case "TextInput.setStyle", "TextInput.requestAutofill":
		slogger().Debug("textinput: ignored", "method", call.Method)
		return codec.Nil{}, nil
	default:
		return nil, codec.ErrMethodNotImplemented
	}
}

func (e *Editor) setClient(args codec.Value) error {
	l, ok := codec.AsList(args)
	if !ok || len(l) < 1 {
		return fmt.Errorf("%w: setClient expects [id, config]", ErrBadArguments)
	}
	id, ok := codec.AsInt(l[0])
	if !ok {
		return fmt.Errorf("%w: setClient id is %v", ErrBadArguments, l[0].Kind())
	}
	action := ActionDone
	obscure := false
	if len(l) > 1 {
		if cfg, ok := codec.AsMap(l[1]); ok {
			if a, ok := cfg.Get("inputAction"); ok {
				if s, ok := codec.AsString(a); ok && s != "" {
					action = s
				}
			}
			if o, ok := cfg.Get("obscureText"); ok {
				obscure, _ = codec.AsBool(o)
			}
		}
	}
	e.attached = true
	e.client = id
	e.action = action
	slogger().Debug("textinput: client set", "client", id, "action", action)
	if e.ime != nil {
		e.ime.SetIMEEnabled(!obscure)
	}
	return nil
}

func (e *Editor) setEditableSizeAndTransform(args codec.Value) error {
	m, ok := codec.AsMap(args)
	if !ok {
		return fmt.Errorf("%w: setEditableSizeAndTransform expects a map", ErrBadArguments)
	}
	w, _ := m.Get("width")
	h, _ := m.Get("height")
	e.size[0], _ = codec.AsFloat(w)
	e.size[1], _ = codec.AsFloat(h)
	if t, ok := m.Get("transform"); ok {
		l, ok := codec.AsList(t)
		if !ok || len(l) != 16 {
			return fmt.Errorf("%w: transform must have 16 elements", ErrBadArguments)
		}
		for i, x := range l {
			e.transform[i], _ = codec.AsFloat(x)
		}
	}
	e.positionIME()
	return nil
}

// positionIME moves the candidate window below the caret. The transform
// is a column-major 4x4 matrix from editable to window coordinates.
func (e *Editor) positionIME() {
	if e.ime == nil {
		return
	}
	x, y := e.caret.X, e.caret.Y+e.caret.Height
	t := &e.transform
	w := t[3]*x + t[7]*y + t[15]
	if w == 0 {
		w = 1
	}
	px := (t[0]*x + t[4]*y + t[12]) / w
	py := (t[1]*x + t[5]*y + t[13]) / w
	e.ime.SetIMEPosition(int(px), int(py))
}

func parseRect(args codec.Value) (Rect, error) {
	m, ok := codec.AsMap(args)
	if !ok {
		return Rect{}, fmt.Errorf("%w: rect expects a map", ErrBadArguments)
	}
	var r Rect
	for _, f := range []struct {
		key string
		dst *float64
	}{{"x", &r.X}, {"y", &r.Y}, {"width", &r.Width}, {"height", &r.Height}} {
		if v, ok := m.Get(f.key); ok {
			*f.dst, _ = codec.AsFloat(v)
		}
	}
	return r, nil
}

func identity() [16]float64 {
	return [16]float64{0: 1, 5: 1, 10: 1, 15: 1}
}

// HandleKey applies a key press to the editing value. Releases and events
// arriving while the selection is unset are ignored.
func (e *Editor) HandleKey(ev KeyEvent) {
	if ev.Released || !e.value.HasSelection() {
		return
	}
	v := e.value
	shift := ev.Mods.HasShift()
	action := ""

	switch {
	case lineBindings && ev.Mods.HasSuper() && ev.Key == gpucontext.KeyLeft:
		v = v.MoveHome(shift)
	case lineBindings && ev.Mods.HasSuper() && ev.Key == gpucontext.KeyRight:
		v = v.MoveEnd(shift)
	case ev.Key == gpucontext.KeyLeft:
		v = v.MoveLeft(shift)
	case ev.Key == gpucontext.KeyRight:
		v = v.MoveRight(shift)
	case ev.Key == gpucontext.KeyHome, ev.Key == gpucontext.KeyUp:
		v = v.MoveHome(shift)
	case ev.Key == gpucontext.KeyEnd, ev.Key == gpucontext.KeyDown:
		v = v.MoveEnd(shift)
	case ev.Key == gpucontext.KeyBackspace:
		v = v.Backspace()
	case ev.Key == gpucontext.KeyDelete:
		v = v.Delete()
	case ev.Key == gpucontext.KeyEnter, ev.Key == gpucontext.KeyNumpadEnter:
		action = e.action
	case ev.Key == gpucontext.KeyTab:
		action = ActionNext
		if shift {
			action = ActionPrevious
		}
	case ev.Key == gpucontext.KeyA && actionKey(ev.Mods):
		v = v.SelectAll()
	case lineBindings && ev.Key == gpucontext.KeyA && ev.Mods.HasControl():
		v = v.MoveHome(shift)
	case lineBindings && ev.Key == gpucontext.KeyE && ev.Mods.HasControl():
		v = v.MoveEnd(shift)
	case ev.Key == gpucontext.KeyX && actionKey(ev.Mods):
		if sel := v.Selected(); sel != "" {
			e.writeClipboard(sel)
			v = v.Insert("")
		}
	case ev.Key == gpucontext.KeyC && actionKey(ev.Mods):
		if sel := v.Selected(); sel != "" {
			e.writeClipboard(sel)
		}
	case ev.Key == gpucontext.KeyV && actionKey(ev.Mods):
		if e.clip != nil {
			if text, err := e.clip.ClipboardRead(); err == nil && text != "" {
				v = v.Insert(text)
			}
		}
	case ev.Mods.HasControl() || ev.Mods.HasSuper():
	default:
		if printable(ev.Text) {
			v = v.Insert(ev.Text)
		}
	}

	e.apply(v)
	if action != "" {
		e.performAction(action)
	}
}

// Compose updates the in-progress IME composition.
func (e *Editor) Compose(s gpucontext.IMEState) {
	if !e.value.HasSelection() {
		return
	}
	if !s.Composing {
		e.apply(e.value.Commit(""))
		return
	}
	e.apply(e.value.Compose(s.CompositionText, s.CursorPos))
}

// CommitComposition replaces the composing range with the committed text.
func (e *Editor) CommitComposition(text string) {
	if !e.value.HasSelection() {
		return
	}
	e.apply(e.value.Commit(text))
}

func (e *Editor) apply(v Value) {
	if v == e.value {
		return
	}
	e.value = v
	if !e.attached {
		return
	}
	e.out.SendTextInput(codec.MethodCall{
		Method: methodUpdateEditingState,
		Args:   codec.List{codec.Int64(e.client), v.ToCodec()},
	})
}

func (e *Editor) performAction(action string) {
	if !e.attached {
		return
	}
	slogger().Debug("textinput: perform action", "client", e.client, "action", action)
	e.out.SendTextInput(codec.MethodCall{
		Method: methodPerformAction,
		Args:   codec.List{codec.Int64(e.client), codec.String(action)},
	})
}

func (e *Editor) writeClipboard(text string) {
	if e.clip == nil {
		return
	}
	if err := e.clip.ClipboardWrite(text); err != nil {
		slogger().Warn("textinput: clipboard write failed", "err", err)
	}
}

// printable reports whether text contains at least one non-control rune.
func printable(text string) bool {
	for _, r := range text {
		if !unicode.IsControl(r) {
			return true
		}
	}
	return false
}
