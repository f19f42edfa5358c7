package textinput

// Editing primitives. Each one expects HasSelection to hold and returns the
// edited value; the receiver is never modified.

// MoveLeft moves the caret one scalar left. Without shift a non-empty
// selection collapses to its start instead.
func (v Value) MoveLeft(shift bool) Value {
	start, end := v.Selection()
	switch {
	case shift:
		v.SelectionExtent = max(clamp(v.SelectionExtent, 0, v.Len())-1, 0)
	case start != end:
		v.SelectionBase, v.SelectionExtent = start, start
	default:
		p := max(start-1, 0)
		v.SelectionBase, v.SelectionExtent = p, p
	}
	return v
}

// MoveRight mirrors MoveLeft toward the end of the text.
func (v Value) MoveRight(shift bool) Value {
	n := v.Len()
	start, end := v.Selection()
	switch {
	case shift:
		v.SelectionExtent = min(clamp(v.SelectionExtent, 0, n)+1, n)
	case start != end:
		v.SelectionBase, v.SelectionExtent = end, end
	default:
		p := min(end+1, n)
		v.SelectionBase, v.SelectionExtent = p, p
	}
	return v
}

// MoveHome moves the selection base to 0. The extent follows unless shift
// is held, which leaves a selection from 0 to the old extent.
func (v Value) MoveHome(shift bool) Value {
	v.SelectionBase = 0
	if !shift {
		v.SelectionExtent = 0
	}
	return v
}

// MoveEnd moves the extent to the end of the text. The base follows unless
// shift is held.
func (v Value) MoveEnd(shift bool) Value {
	v.SelectionExtent = v.Len()
	if !shift {
		v.SelectionBase = v.SelectionExtent
	}
	return v
}

// SelectAll selects the whole text.
func (v Value) SelectAll() Value {
	v.SelectionBase = 0
	v.SelectionExtent = v.Len()
	return v
}

// Backspace deletes the selection, or the scalar before a collapsed caret.
func (v Value) Backspace() Value {
	start, end := v.Selection()
	if start != end {
		return v.replace(start, end, "")
	}
	if start == 0 {
		return v
	}
	return v.replace(start-1, start, "")
}

// Delete deletes the selection, or the scalar after a collapsed caret.
func (v Value) Delete() Value {
	start, end := v.Selection()
	if start != end {
		return v.replace(start, end, "")
	}
	if start >= v.Len() {
		return v
	}
	return v.replace(start, start+1, "")
}

// Insert replaces the selection with text and puts the caret after it.
func (v Value) Insert(text string) Value {
	start, end := v.Selection()
	return v.replace(start, end, text)
}

// replace swaps runes [start,end) for text, collapses the caret after the
// inserted text and drops any composing range.
func (v Value) replace(start, end int, text string) Value {
	r := []rune(v.Text)
	ins := []rune(text)
	out := make([]rune, 0, len(r)-(end-start)+len(ins))
	out = append(out, r[:start]...)
	out = append(out, ins...)
	out = append(out, r[end:]...)
	v.Text = string(out)
	caret := start + len(ins)
	v.SelectionBase, v.SelectionExtent = caret, caret
	v.ComposingBase, v.ComposingExtent = Unset, Unset
	return v
}

// Compose replaces the composing range with text, starting a new range at
// the selection when none is active. cursor is relative to the composed text.
func (v Value) Compose(text string, cursor int) Value {
	start, end := v.composing()
	v = v.replace(start, end, text)
	n := len([]rune(text))
	if n > 0 {
		v.ComposingBase, v.ComposingExtent = start, start+n
	}
	caret := start + clamp(cursor, 0, n)
	v.SelectionBase, v.SelectionExtent = caret, caret
	return v
}

// Commit replaces the composing range (or the selection) with the final
// text and ends composition.
func (v Value) Commit(text string) Value {
	start, end := v.composing()
	return v.replace(start, end, text)
}

func (v Value) composing() (start, end int) {
	if v.ComposingBase < 0 || v.ComposingExtent < 0 {
		return v.Selection()
	}
	n := v.Len()
	start = clamp(min(v.ComposingBase, v.ComposingExtent), 0, n)
	end = clamp(max(v.ComposingBase, v.ComposingExtent), 0, n)
	return start, end
}
