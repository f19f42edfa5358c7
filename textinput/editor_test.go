package textinput

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/codec"
)

type recorder struct {
	calls []codec.MethodCall
}

func (r *recorder) SendTextInput(call codec.MethodCall) { r.calls = append(r.calls, call) }

type fakeClipboard struct {
	text    string
	readErr error
}

func (c *fakeClipboard) ClipboardRead() (string, error) { return c.text, c.readErr }
func (c *fakeClipboard) ClipboardWrite(text string) error {
	c.text = text
	return nil
}

type fakeIME struct {
	x, y    int
	enabled bool
}

func (f *fakeIME) SetIMEPosition(x, y int)    { f.x, f.y = x, y }
func (f *fakeIME) SetIMEEnabled(enabled bool) { f.enabled = enabled }

// shortcut is the platform action modifier.
func shortcut() gpucontext.Modifiers {
	if actionKey(gpucontext.ModControl) {
		return gpucontext.ModControl
	}
	return gpucontext.ModSuper
}

func attached(t *testing.T, v Value, action string) (*Editor, *recorder, *fakeClipboard) {
	t.Helper()
	rec := &recorder{}
	clip := &fakeClipboard{}
	e := New(rec, clip)
	cfg := codec.Map{}
	if action != "" {
		cfg.Set("inputAction", codec.String(action))
	}
	if _, err := e.HandleMethodCall(codec.MethodCall{
		Method: "TextInput.setClient",
		Args:   codec.List{codec.Int64(3), cfg},
	}); err != nil {
		t.Fatalf("setClient: %v", err)
	}
	e.SetValue(v)
	return e, rec, clip
}

func press(e *Editor, key gpucontext.Key, mods gpucontext.Modifiers) {
	e.HandleKey(KeyEvent{Key: key, Mods: mods})
}

func lastValue(t *testing.T, rec *recorder) Value {
	t.Helper()
	if len(rec.calls) == 0 {
		t.Fatal("no message sent")
	}
	call := rec.calls[len(rec.calls)-1]
	if call.Method != methodUpdateEditingState {
		t.Fatalf("last call = %s, want %s", call.Method, methodUpdateEditingState)
	}
	args := call.Args.(codec.List)
	if id, _ := codec.AsInt(args[0]); id != 3 {
		t.Errorf("client = %d, want 3", id)
	}
	v, err := FromCodec(args[1])
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestBackspaceSendsState(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("hello", 5), "")
	press(e, gpucontext.KeyBackspace, 0)

	if got := lastValue(t, rec); got != Collapsed("hell", 4) {
		t.Errorf("state = %v, want \"hell\" at 4", got)
	}
}

func TestDeleteSelection(t *testing.T) {
	e, rec, _ := attached(t, sel("hello world", 0, 5), "")
	press(e, gpucontext.KeyDelete, 0)

	if got := lastValue(t, rec); got != Collapsed(" world", 0) {
		t.Errorf("state = %v, want \" world\" at 0", got)
	}
}

func TestSelectAllShortcut(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("abcdefg", 3), "")
	press(e, gpucontext.KeyA, shortcut())

	got := lastValue(t, rec)
	if got.SelectionBase != 0 || got.SelectionExtent != 7 {
		t.Errorf("selection = [%d,%d], want [0,7]", got.SelectionBase, got.SelectionExtent)
	}
}

func TestShiftHome(t *testing.T) {
	e, _, _ := attached(t, Collapsed("0123456789", 8), "")
	press(e, gpucontext.KeyHome, gpucontext.ModShift)

	got := e.Value()
	if got.SelectionBase != 0 || got.SelectionExtent != 8 {
		t.Errorf("selection = [%d,%d], want [0,8]", got.SelectionBase, got.SelectionExtent)
	}
}

func TestDetachedSendsNothing(t *testing.T) {
	rec := &recorder{}
	e := New(rec, &fakeClipboard{})
	e.SetValue(Collapsed("abc", 3))

	for _, k := range []gpucontext.Key{gpucontext.KeyBackspace, gpucontext.KeyLeft, gpucontext.KeyEnter, gpucontext.KeyTab} {
		press(e, k, 0)
	}
	e.HandleKey(KeyEvent{Text: "x"})

	if len(rec.calls) != 0 {
		t.Errorf("detached editor sent %d messages, want 0", len(rec.calls))
	}
	if got := e.Value().Text; got != "axb" {
		t.Errorf("text = %q, want %q", got, "axb")
	}
}

func TestNoSelectionIgnoresKeys(t *testing.T) {
	e, rec, _ := attached(t, Empty(), "")
	press(e, gpucontext.KeyBackspace, 0)
	e.HandleKey(KeyEvent{Text: "x"})
	if len(rec.calls) != 0 {
		t.Errorf("sent %d messages, want 0", len(rec.calls))
	}
}

func TestReleaseIgnored(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("ab", 2), "")
	e.HandleKey(KeyEvent{Key: gpucontext.KeyBackspace, Released: true})
	if len(rec.calls) != 0 || e.Value().Text != "ab" {
		t.Errorf("release edited text: %v", e.Value())
	}
}

func TestEnterPerformsAttachedAction(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("q", 1), "TextInputAction.search")
	press(e, gpucontext.KeyEnter, 0)

	if len(rec.calls) != 1 {
		t.Fatalf("sent %d messages, want 1", len(rec.calls))
	}
	call := rec.calls[0]
	want := codec.List{codec.Int64(3), codec.String("TextInputAction.search")}
	if call.Method != methodPerformAction || !equalList(call.Args, want) {
		t.Errorf("got %s %v, want performAction %v", call.Method, call.Args, want)
	}
	if e.Value().Text != "q" {
		t.Errorf("Enter changed text to %q", e.Value().Text)
	}
}

func TestEnterDefaultsToDone(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("", 0), "")
	press(e, gpucontext.KeyEnter, 0)
	if len(rec.calls) != 1 || !equalList(rec.calls[0].Args, codec.List{codec.Int64(3), codec.String(ActionDone)}) {
		t.Errorf("calls = %v, want performAction done", rec.calls)
	}
}

func TestTabActions(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("x", 1), "")
	press(e, gpucontext.KeyTab, 0)
	press(e, gpucontext.KeyTab, gpucontext.ModShift)

	if len(rec.calls) != 2 {
		t.Fatalf("sent %d messages, want 2", len(rec.calls))
	}
	for i, want := range []string{ActionNext, ActionPrevious} {
		args := rec.calls[i].Args.(codec.List)
		if args[1] != codec.String(want) {
			t.Errorf("call %d action = %v, want %s", i, args[1], want)
		}
	}
	if e.Value().Text != "x" {
		t.Errorf("Tab changed text to %q", e.Value().Text)
	}
}

func TestClipboardShortcuts(t *testing.T) {
	e, _, clip := attached(t, sel("hello world", 6, 11), "")

	press(e, gpucontext.KeyC, shortcut())
	if clip.text != "world" || e.Value().Text != "hello world" {
		t.Fatalf("copy: clipboard %q text %q", clip.text, e.Value().Text)
	}

	press(e, gpucontext.KeyX, shortcut())
	if clip.text != "world" || e.Value() != Collapsed("hello ", 6) {
		t.Fatalf("cut: clipboard %q value %v", clip.text, e.Value())
	}

	press(e, gpucontext.KeyHome, 0)
	press(e, gpucontext.KeyV, shortcut())
	if e.Value() != Collapsed("worldhello ", 5) {
		t.Errorf("paste: value %v", e.Value())
	}
}

func TestPasteErrorIgnored(t *testing.T) {
	e, rec, clip := attached(t, Collapsed("a", 1), "")
	clip.readErr = errors.New("no clipboard")
	press(e, gpucontext.KeyV, shortcut())
	if len(rec.calls) != 0 || e.Value().Text != "a" {
		t.Errorf("failed paste edited value: %v", e.Value())
	}
}

func TestModifierChordsIgnored(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("a", 1), "")
	e.HandleKey(KeyEvent{Key: gpucontext.KeyQ, Mods: gpucontext.ModControl, Text: "q"})
	e.HandleKey(KeyEvent{Key: gpucontext.KeyQ, Mods: gpucontext.ModSuper, Text: "q"})
	e.HandleKey(KeyEvent{Text: "\x7f"})
	if len(rec.calls) != 0 || e.Value().Text != "a" {
		t.Errorf("chord edited value: %v", e.Value())
	}
}

func TestTextInsertion(t *testing.T) {
	e, rec, _ := attached(t, sel("abXd", 2, 3), "")
	e.HandleKey(KeyEvent{Key: gpucontext.KeyC, Text: "c"})
	if got := lastValue(t, rec); got != Collapsed("abcd", 3) {
		t.Errorf("state = %v, want \"abcd\" at 3", got)
	}
}

func TestClearClientResets(t *testing.T) {
	ime := &fakeIME{}
	e := New(&recorder{}, nil, WithIME(ime))
	_, _ = e.HandleMethodCall(codec.MethodCall{
		Method: "TextInput.setClient",
		Args:   codec.List{codec.Int64(1), codec.Map{{Key: codec.String("obscureText"), Value: codec.Bool(false)}}},
	})
	if !ime.enabled {
		t.Error("IME not enabled for a visible field")
	}
	e.SetValue(Collapsed("abc", 1))

	if _, err := e.HandleMethodCall(codec.MethodCall{Method: "TextInput.clearClient"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Client(); ok {
		t.Error("still attached after clearClient")
	}
	if e.Value() != Empty() {
		t.Errorf("value = %v, want empty", e.Value())
	}
	if ime.enabled {
		t.Error("IME still enabled after clearClient")
	}
}

func TestSetEditingState(t *testing.T) {
	e := New(&recorder{}, nil)
	_, err := e.HandleMethodCall(codec.MethodCall{
		Method: "TextInput.setEditingState",
		Args: codec.Map{
			{Key: codec.String("text"), Value: codec.String("hey")},
			{Key: codec.String("selectionBase"), Value: codec.Int64(1)},
			{Key: codec.String("selectionExtent"), Value: codec.Int64(3)},
			{Key: codec.String("composingBase"), Value: codec.Int64(-1)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Value(); got != sel("hey", 1, 3) {
		t.Errorf("value = %v, want sel[1,3] of hey", got)
	}

	_, err = e.HandleMethodCall(codec.MethodCall{Method: "TextInput.setEditingState", Args: codec.String("x")})
	if !errors.Is(err, ErrBadEditingValue) {
		t.Errorf("err = %v, want ErrBadEditingValue", err)
	}
}

func TestCaretRectPositionsIME(t *testing.T) {
	ime := &fakeIME{}
	e := New(&recorder{}, nil, WithIME(ime))

	tr := make(codec.List, 16)
	for i := range tr {
		tr[i] = codec.Int64(0)
	}
	tr[0], tr[5], tr[10], tr[15] = codec.Int64(1), codec.Int64(1), codec.Int64(1), codec.Int64(1)
	tr[12], tr[13] = codec.Float64(100), codec.Float64(50)

	calls := []codec.MethodCall{
		{Method: "TextInput.setEditableSizeAndTransform", Args: codec.Map{
			{Key: codec.String("width"), Value: codec.Float64(200)},
			{Key: codec.String("height"), Value: codec.Float64(30)},
			{Key: codec.String("transform"), Value: tr},
		}},
		{Method: "TextInput.setCaretRect", Args: codec.Map{
			{Key: codec.String("x"), Value: codec.Int64(10)},
			{Key: codec.String("y"), Value: codec.Int64(2)},
			{Key: codec.String("width"), Value: codec.Int64(1)},
			{Key: codec.String("height"), Value: codec.Int64(20)},
		}},
	}
	for _, c := range calls {
		if _, err := e.HandleMethodCall(c); err != nil {
			t.Fatalf("%s: %v", c.Method, err)
		}
	}
	if ime.x != 110 || ime.y != 72 {
		t.Errorf("IME position = (%d,%d), want (110,72)", ime.x, ime.y)
	}
}

func TestShowHideAndUnknown(t *testing.T) {
	e := New(&recorder{}, nil)
	_, _ = e.HandleMethodCall(codec.MethodCall{Method: "TextInput.show"})
	if !e.Visible() {
		t.Error("Visible() = false after show")
	}
	_, _ = e.HandleMethodCall(codec.MethodCall{Method: "TextInput.hide"})
	if e.Visible() {
		t.Error("Visible() = true after hide")
	}
	if _, err := e.HandleMethodCall(codec.MethodCall{Method: "TextInput.finishAutofillContext"}); !errors.Is(err, codec.ErrMethodNotImplemented) {
		t.Errorf("err = %v, want ErrMethodNotImplemented", err)
	}
	if _, err := e.HandleMethodCall(codec.MethodCall{Method: "TextInput.setClient", Args: codec.Nil{}}); !errors.Is(err, ErrBadArguments) {
		t.Errorf("err = %v, want ErrBadArguments", err)
	}
}

func TestCompositionSendsState(t *testing.T) {
	e, rec, _ := attached(t, Collapsed("", 0), "")
	e.Compose(gpucontext.IMEState{Composing: true, CompositionText: "ka", CursorPos: 2})
	e.CommitComposition("か")

	if len(rec.calls) != 2 {
		t.Fatalf("sent %d messages, want 2", len(rec.calls))
	}
	if got := lastValue(t, rec); got != Collapsed("か", 1) {
		t.Errorf("state = %v, want committed text", got)
	}
}

func equalList(a codec.Value, b codec.List) bool {
	l, ok := a.(codec.List)
	if !ok || len(l) != len(b) {
		return false
	}
	for i := range l {
		if l[i] != b[i] {
			return false
		}
	}
	return true
}
