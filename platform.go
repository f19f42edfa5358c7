package flutterhost

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/codec"
)

// Lifecycle states sent on ChannelLifecycle.
const (
	LifecycleResumed  = "AppLifecycleState.resumed"
	LifecycleInactive = "AppLifecycleState.inactive"
	LifecycleDetached = "AppLifecycleState.detached"
)

const textPlain = "text/plain"

// handlePlatform serves ChannelPlatform.
func (a *Application) handlePlatform(call codec.MethodCall) (codec.Value, error) {
	switch call.Method {
	case "Clipboard.setData":
		text, _ := codec.AsString(get(call.Args, "text"))
		if err := a.opts.platform.ClipboardWrite(text); err != nil {
			return nil, &codec.MethodError{Code: "clipboard", Message: err.Error()}
		}
		return codec.Nil{}, nil
	case "Clipboard.getData":
		if format, ok := codec.AsString(call.Args); ok && format != textPlain {
			return codec.Nil{}, nil
		}
		text, err := a.opts.platform.ClipboardRead()
		if err != nil {
			return nil, &codec.MethodError{Code: "clipboard", Message: err.Error()}
		}
		if text == "" {
			return codec.Nil{}, nil
		}
		var m codec.Map
		m.Set("text", codec.String(text))
		return m, nil
	case "Clipboard.hasStrings":
		text, err := a.opts.platform.ClipboardRead()
		var m codec.Map
		m.Set("value", codec.Bool(err == nil && text != ""))
		return m, nil
	case "SystemNavigator.pop":
		slogger().Info("flutterhost: app requested exit")
		if a.opts.onQuit != nil {
			a.opts.onQuit()
		} else {
			a.Quit()
		}
		return codec.Nil{}, nil
	case "SystemChrome.setApplicationSwitcherDescription",
		"SystemChrome.setPreferredOrientations",
		"SystemChrome.setEnabledSystemUIMode",
		"SystemChrome.setEnabledSystemUIOverlays",
		"SystemChrome.setSystemUIOverlayStyle",
		"SystemChrome.restoreSystemUIOverlays",
		"HapticFeedback.vibrate",
		"SystemSound.play":
		slogger().Debug("flutterhost: ignored", "method", call.Method)
		return codec.Nil{}, nil
	default:
		return nil, codec.ErrMethodNotImplemented
	}
}

// systemCursors maps the framework's system cursor kinds to the window's
// cursor shapes. Kinds without a shape fall back to the default arrow.
var systemCursors = map[string]gpucontext.CursorShape{
	"basic":                 gpucontext.CursorDefault,
	"click":                 gpucontext.CursorPointer,
	"text":                  gpucontext.CursorText,
	"verticalText":          gpucontext.CursorText,
	"precise":               gpucontext.CursorCrosshair,
	"cell":                  gpucontext.CursorCrosshair,
	"move":                  gpucontext.CursorMove,
	"grab":                  gpucontext.CursorMove,
	"grabbing":              gpucontext.CursorMove,
	"allScroll":             gpucontext.CursorMove,
	"forbidden":             gpucontext.CursorNotAllowed,
	"noDrop":                gpucontext.CursorNotAllowed,
	"wait":                  gpucontext.CursorWait,
	"progress":              gpucontext.CursorWait,
	"none":                  gpucontext.CursorNone,
	"resizeUp":              gpucontext.CursorResizeNS,
	"resizeDown":            gpucontext.CursorResizeNS,
	"resizeUpDown":          gpucontext.CursorResizeNS,
	"resizeRow":             gpucontext.CursorResizeNS,
	"resizeLeft":            gpucontext.CursorResizeEW,
	"resizeRight":           gpucontext.CursorResizeEW,
	"resizeLeftRight":       gpucontext.CursorResizeEW,
	"resizeColumn":          gpucontext.CursorResizeEW,
	"resizeUpLeft":          gpucontext.CursorResizeNWSE,
	"resizeDownRight":       gpucontext.CursorResizeNWSE,
	"resizeUpLeftDownRight": gpucontext.CursorResizeNWSE,
	"resizeUpRight":         gpucontext.CursorResizeNESW,
	"resizeDownLeft":        gpucontext.CursorResizeNESW,
	"resizeUpRightDownLeft": gpucontext.CursorResizeNESW,
}

// CursorShape returns the window cursor for a framework cursor kind.
func CursorShape(kind string) gpucontext.CursorShape {
	if s, ok := systemCursors[kind]; ok {
		return s
	}
	return gpucontext.CursorDefault
}

// handleMouseCursor serves ChannelMouseCursor.
func (a *Application) handleMouseCursor(call codec.MethodCall) (codec.Value, error) {
	if call.Method != "activateSystemCursor" {
		return nil, codec.ErrMethodNotImplemented
	}
	kind, ok := codec.AsString(get(call.Args, "kind"))
	if !ok {
		return nil, &codec.MethodError{Code: "bad_arguments", Message: "activateSystemCursor without kind"}
	}
	shape := CursorShape(kind)
	if shape != a.cursor {
		a.cursor = shape
		a.opts.platform.SetCursor(shape)
	}
	return codec.Nil{}, nil
}

// Cursor returns the cursor shape last activated by the framework.
func (a *Application) Cursor() gpucontext.CursorShape { return a.cursor }

// sendSettings reports the user preferences the framework reads at
// startup.
func (a *Application) sendSettings() {
	brightness := "light"
	if a.opts.platform.DarkMode() {
		brightness = "dark"
	}
	var m codec.Map
	m.Set("textScaleFactor", codec.Float64(a.opts.platform.FontScale()))
	m.Set("alwaysUse24HourFormat", codec.Bool(false))
	m.Set("platformBrightness", codec.String(brightness))
	a.Send(ChannelSettings, codec.EncodeJSON(m))
}

// setLifecycle sends state on ChannelLifecycle when it changes.
func (a *Application) setLifecycle(state string) {
	if state == a.lifecycle {
		return
	}
	a.lifecycle = state
	slogger().Debug("flutterhost: lifecycle", "state", state)
	a.Send(ChannelLifecycle, []byte(state))
}

// Lifecycle returns the last lifecycle state sent.
func (a *Application) Lifecycle() string { return a.lifecycle }

func get(v codec.Value, key string) codec.Value {
	m, _ := codec.AsMap(v)
	got, _ := m.Get(key)
	return got
}
