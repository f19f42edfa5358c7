package flutterhost

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/flutterhost/codec"
	"github.com/gogpu/flutterhost/engine"
)

// call sends a method call through the mailbox and returns the decoded
// reply. A nil reply is returned as nil, nil.
func call(t *testing.T, a *Application, e *fakeEngine, channel string, c codec.MethodCodec, m codec.MethodCall) (codec.Value, error) {
	t.Helper()
	h := engine.ResponseHandle(e.replies + 100)
	a.HandlePlatformMessage(engine.PlatformMessage{Channel: channel, Message: c.EncodeMethodCall(m), Response: h})
	a.Drain()
	reply, ok := e.responses[h]
	require.True(t, ok, "no reply on %s", channel)
	if len(reply) == 0 {
		return nil, nil
	}
	return c.DecodeEnvelope(reply)
}

func args(kv ...any) codec.Map {
	var m codec.Map
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i].(string), kv[i+1].(codec.Value))
	}
	return m
}

func TestClipboard(t *testing.T) {
	a, e, p, _ := newTestApp(t)
	json := codec.JSONMethodCodec{}

	got, err := call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "Clipboard.hasStrings", Args: codec.String(textPlain)})
	require.NoError(t, err)
	has, _ := codec.AsBool(get(got, "value"))
	assert.False(t, has)

	got, err = call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "Clipboard.getData", Args: codec.String(textPlain)})
	require.NoError(t, err)
	assert.True(t, codec.IsNil(got))

	_, err = call(t, a, e, ChannelPlatform, json, codec.MethodCall{
		Method: "Clipboard.setData",
		Args:   args("text", codec.String("copied")),
	})
	require.NoError(t, err)
	assert.Equal(t, "copied", p.clipboard)

	got, err = call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "Clipboard.getData", Args: codec.String(textPlain)})
	require.NoError(t, err)
	text, _ := codec.AsString(get(got, "text"))
	assert.Equal(t, "copied", text)

	got, err = call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "Clipboard.getData", Args: codec.String("image/png")})
	require.NoError(t, err)
	assert.True(t, codec.IsNil(got))

	got, err = call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "Clipboard.hasStrings", Args: codec.String(textPlain)})
	require.NoError(t, err)
	has, _ = codec.AsBool(get(got, "value"))
	assert.True(t, has)
}

func TestPlatformMethods(t *testing.T) {
	a, e, _, _ := newTestApp(t)
	json := codec.JSONMethodCodec{}

	got, err := call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "SystemChrome.setApplicationSwitcherDescription", Args: args("label", codec.String("x"))})
	require.NoError(t, err)
	assert.True(t, codec.IsNil(got))

	got, err = call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "Unknown.method"})
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = call(t, a, e, ChannelPlatform, json, codec.MethodCall{Method: "SystemNavigator.pop"})
	require.NoError(t, err)
	select {
	case <-a.Done():
	default:
		t.Fatal("SystemNavigator.pop did not quit")
	}
}

func TestSystemNavigatorPopHandler(t *testing.T) {
	quits := 0
	a, e, _, _ := newTestApp(t, WithQuitHandler(func() { quits++ }))

	_, err := call(t, a, e, ChannelPlatform, codec.JSONMethodCodec{}, codec.MethodCall{Method: "SystemNavigator.pop"})
	require.NoError(t, err)
	assert.Equal(t, 1, quits)
	select {
	case <-a.Done():
		t.Fatal("quit handler must replace Quit")
	default:
	}
}

func TestMouseCursor(t *testing.T) {
	a, e, p, _ := newTestApp(t)
	std := codec.StandardMethodCodec{}
	activate := func(kind string) error {
		_, err := call(t, a, e, ChannelMouseCursor, std, codec.MethodCall{
			Method: "activateSystemCursor",
			Args:   args("device", codec.Int32(1), "kind", codec.String(kind)),
		})
		return err
	}

	require.NoError(t, activate("click"))
	require.NoError(t, activate("click"))
	require.NoError(t, activate("text"))
	require.NoError(t, activate("unknownKind"))
	assert.Equal(t, []gpucontext.CursorShape{
		gpucontext.CursorPointer,
		gpucontext.CursorText,
		gpucontext.CursorDefault,
	}, p.cursors)
	assert.Equal(t, gpucontext.CursorDefault, a.Cursor())

	_, err := call(t, a, e, ChannelMouseCursor, std, codec.MethodCall{Method: "activateSystemCursor", Args: args("device", codec.Int32(1))})
	var merr *codec.MethodError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "bad_arguments", merr.Code)
}

func TestCursorShape(t *testing.T) {
	tests := map[string]gpucontext.CursorShape{
		"basic":           gpucontext.CursorDefault,
		"forbidden":       gpucontext.CursorNotAllowed,
		"resizeLeftRight": gpucontext.CursorResizeEW,
		"resizeUpDown":    gpucontext.CursorResizeNS,
		"none":            gpucontext.CursorNone,
		"zoomIn":          gpucontext.CursorDefault,
	}
	for kind, want := range tests {
		assert.Equal(t, want, CursorShape(kind), kind)
	}
}

func TestDarkModeSettings(t *testing.T) {
	p := &fakePlatform{dark: true}
	e := newFakeEngine()
	a := New(&fakeCompositor{}, WithPlatform(p), WithLocales(DefaultLocale))
	a.Attach(e)
	require.NoError(t, a.Start(10, 10, 1))

	settings := e.on(ChannelSettings)
	require.Len(t, settings, 1)
	v, err := codec.DecodeJSON(settings[0])
	require.NoError(t, err)
	brightness, _ := codec.AsString(get(v, "platformBrightness"))
	assert.Equal(t, "dark", brightness)
}
