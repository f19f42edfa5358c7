package textinput

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gogpu/flutterhost/codec"
)

// Unset marks a selection or composing index that carries no position.
const Unset = -1

// Text affinities as spelled on the wire.
const (
	AffinityDownstream = "TextAffinity.downstream"
	AffinityUpstream   = "TextAffinity.upstream"
)

// ErrBadEditingValue is returned when an editing value payload is not a map.
var ErrBadEditingValue = errors.New("textinput: malformed editing value")

// Value is the editing state of one text field. Indices count Unicode
// scalar values, not bytes, and are Unset when negative.
type Value struct {
	Text            string
	SelectionBase   int
	SelectionExtent int
	ComposingBase   int
	ComposingExtent int
	Affinity        string
	Directional     bool
}

// Empty returns the value a field has before any state is set.
func Empty() Value {
	return Value{
		SelectionBase:   Unset,
		SelectionExtent: Unset,
		ComposingBase:   Unset,
		ComposingExtent: Unset,
		Affinity:        AffinityDownstream,
	}
}

// Collapsed returns a value holding text with the caret at offset.
func Collapsed(text string, offset int) Value {
	v := Empty()
	v.Text = text
	v.SelectionBase = offset
	v.SelectionExtent = offset
	return v
}

// Len returns the text length in scalar values.
func (v Value) Len() int { return utf8.RuneCountInString(v.Text) }

// HasSelection reports whether both selection indices are set.
func (v Value) HasSelection() bool {
	return v.SelectionBase >= 0 && v.SelectionExtent >= 0
}

// Selection returns the normalized selection range clamped to the text.
func (v Value) Selection() (start, end int) {
	n := v.Len()
	start = clamp(min(v.SelectionBase, v.SelectionExtent), 0, n)
	end = clamp(max(v.SelectionBase, v.SelectionExtent), 0, n)
	return start, end
}

// Selected returns the selected substring.
func (v Value) Selected() string {
	start, end := v.Selection()
	return string([]rune(v.Text)[start:end])
}

func (v Value) String() string {
	return fmt.Sprintf("%q sel[%d,%d] comp[%d,%d]",
		v.Text, v.SelectionBase, v.SelectionExtent, v.ComposingBase, v.ComposingExtent)
}

// ToCodec returns the map sent in TextInputClient.updateEditingState.
func (v Value) ToCodec() codec.Map {
	return codec.Map{
		{Key: codec.String("text"), Value: codec.String(v.Text)},
		{Key: codec.String("selectionBase"), Value: codec.Int64(index(v.SelectionBase))},
		{Key: codec.String("selectionExtent"), Value: codec.Int64(index(v.SelectionExtent))},
		{Key: codec.String("selectionAffinity"), Value: codec.String(v.Affinity)},
		{Key: codec.String("selectionIsDirectional"), Value: codec.Bool(v.Directional)},
		{Key: codec.String("composingBase"), Value: codec.Int64(index(v.ComposingBase))},
		{Key: codec.String("composingExtent"), Value: codec.Int64(index(v.ComposingExtent))},
	}
}

// FromCodec parses the map carried by TextInput.setEditingState. Missing or
// null indices are Unset.
func FromCodec(raw codec.Value) (Value, error) {
	m, ok := codec.AsMap(raw)
	if !ok {
		return Value{}, fmt.Errorf("%w: %v", ErrBadEditingValue, kindOf(raw))
	}
	v := Empty()
	if t, ok := m.Get("text"); ok {
		s, ok := codec.AsString(t)
		if !ok && !codec.IsNil(t) {
			return Value{}, fmt.Errorf("%w: text is %v", ErrBadEditingValue, t.Kind())
		}
		v.Text = s
	}
	v.SelectionBase = intField(m, "selectionBase")
	v.SelectionExtent = intField(m, "selectionExtent")
	v.ComposingBase = intField(m, "composingBase")
	v.ComposingExtent = intField(m, "composingExtent")
	if a, ok := m.Get("selectionAffinity"); ok {
		if s, ok := codec.AsString(a); ok {
			v.Affinity = s
		}
	}
	if d, ok := m.Get("selectionIsDirectional"); ok {
		v.Directional, _ = codec.AsBool(d)
	}
	return v, nil
}

func intField(m codec.Map, key string) int {
	raw, ok := m.Get(key)
	if !ok {
		return Unset
	}
	n, ok := codec.AsInt(raw)
	if !ok || n < 0 {
		return Unset
	}
	return int(n)
}

func index(i int) int64 {
	if i < 0 {
		return Unset
	}
	return int64(i)
}

func kindOf(v codec.Value) codec.Kind {
	if v == nil {
		return codec.KindNil
	}
	return v.Kind()
}

func clamp(x, lo, hi int) int {
	return max(lo, min(x, hi))
}
