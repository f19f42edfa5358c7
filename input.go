package flutterhost

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/engine"
	"github.com/gogpu/flutterhost/keymap"
	"github.com/gogpu/flutterhost/textinput"
)

// KeyPress forwards a key press. A press of a key already held is sent as
// a repeat.
func (a *Application) KeyPress(k gpucontext.Key, mods gpucontext.Modifiers) {
	repeat := a.pressed[k]
	a.pressed[k] = true
	a.sendKey(k, engine.KeyEventTypeOf(true, repeat), keymap.Character(k, mods))
	a.editor.HandleKey(textinput.KeyEvent{Key: k, Mods: mods})
}

// KeyRelease forwards a key release.
func (a *Application) KeyRelease(k gpucontext.Key, mods gpucontext.Modifiers) {
	delete(a.pressed, k)
	a.sendKey(k, engine.KeyUp, "")
	a.editor.HandleKey(textinput.KeyEvent{Key: k, Mods: mods, Released: true})
}

// sendKey sends the key to the engine when it has both a physical and a
// logical code. Other keys are dropped. char is the produced text, empty on
// release.
func (a *Application) sendKey(k gpucontext.Key, typ engine.KeyEventType, char string) {
	physical, ok := keymap.Physical(k)
	if !ok {
		slogger().Debug("flutterhost: unmapped key", "key", k)
		return
	}
	logical, ok := keymap.Logical(k, "")
	if !ok {
		slogger().Debug("flutterhost: unmapped key", "key", k)
		return
	}
	engine.Must(a.engine.SendKeyEvent(engine.KeyEvent{
		Timestamp: float64(a.now()) / 1e3,
		Type:      typ,
		Physical:  physical,
		Logical:   logical,
		Character: char,
	}))
}

// TextInput inserts committed text into the focused field.
func (a *Application) TextInput(text string) {
	a.editor.HandleKey(textinput.KeyEvent{Key: gpucontext.KeyUnknown, Text: text})
}

// IMECompose updates the in-progress composition.
func (a *Application) IMECompose(s gpucontext.IMEState) { a.editor.Compose(s) }

// IMECommit ends the composition with text.
func (a *Application) IMECommit(text string) { a.editor.CommitComposition(text) }

// Pointer forwards a pointer sample.
func (a *Application) Pointer(ev gpucontext.PointerEvent) {
	a.sendPointers(a.tracker.Pointer(ev))
}

// Scroll forwards a wheel or trackpad scroll.
func (a *Application) Scroll(ev gpucontext.ScrollEvent) {
	a.sendPointers(a.tracker.Scroll(ev))
}

func (a *Application) sendPointers(events []engine.PointerEvent) {
	if len(events) == 0 {
		return
	}
	engine.Must(a.engine.SendPointerEvents(events))
}

// Focus moves the lifecycle between resumed and inactive. Losing focus
// cancels held keys and pointers.
func (a *Application) Focus(focused bool) {
	if focused {
		a.setLifecycle(LifecycleResumed)
		return
	}
	clear(a.pressed)
	a.sendPointers(a.tracker.Reset())
	a.setLifecycle(LifecycleInactive)
}

// resizer is implemented by compositors that own a swapchain.
type resizer interface {
	Resize(width, height uint32)
}

// MetricsChanged reports a new window geometry: the size in physical
// pixels, the scale factor and the window position. Negative positions
// are clamped to zero.
func (a *Application) MetricsChanged(width, height int, pixelRatio float64, x, y int) {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	a.width, a.height, a.pixelRatio = width, height, pixelRatio
	a.tracker.Scale = pixelRatio
	a.tracker.PageHeight = float64(height)
	if r, ok := a.comp.(resizer); ok && width > 0 && height > 0 {
		r.Resize(uint32(width), uint32(height))
	}
	engine.Must(a.engine.SendWindowMetricsEvent(engine.WindowMetrics{
		Width:      uint64(max(width, 0)),
		Height:     uint64(max(height, 0)),
		PixelRatio: pixelRatio,
		Left:       uint64(max(x, 0)),
		Top:        uint64(max(y, 0)),
	}))
}

// Size returns the last reported window size in physical pixels.
func (a *Application) Size() (width, height int) { return a.width, a.height }

// PixelRatio returns the last reported scale factor.
func (a *Application) PixelRatio() float64 { return a.pixelRatio }
