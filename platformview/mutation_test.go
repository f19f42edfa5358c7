package platformview

import (
	"math"
	"testing"
)

func TestFlatten(t *testing.T) {
	scale := Transformation{ScaleX: 2, ScaleY: 2, Pers2: 1}
	move := Transformation{ScaleX: 1, ScaleY: 1, TransX: 10, TransY: 20, Pers2: 1}

	// Outermost first: the view is scaled, then the result is translated.
	opacity, tr := Flatten([]Mutation{Transform(move), Opacity(0.5), Transform(scale), Opacity(0.5)})
	if opacity != 0.25 {
		t.Errorf("opacity = %v, want 0.25", opacity)
	}
	if got := tr.Apply(Point{1, 1}); got != (Point{12, 22}) {
		t.Errorf("Apply({1,1}) = %v, want {12 22}", got)
	}
}

func TestFlattenIgnoresClips(t *testing.T) {
	opacity, tr := Flatten([]Mutation{ClipRect(Rect{0, 0, 1, 1}), ClipRoundedRect(RoundedRect{})})
	if opacity != 1 || tr != Identity() {
		t.Errorf("Flatten(clips) = %v, %v; want identity", opacity, tr)
	}
}

func TestProjectiveApply(t *testing.T) {
	tr := Transformation{ScaleX: 1, ScaleY: 1, Pers2: 2}
	got := tr.Apply(Point{4, 6})
	if math.Abs(got.X-2) > 1e-12 || math.Abs(got.Y-3) > 1e-12 {
		t.Errorf("Apply = %v, want {2 3}", got)
	}
}

func TestMutationString(t *testing.T) {
	if got := Opacity(0.5).String(); got != "Opacity(0.5)" {
		t.Errorf("String() = %q", got)
	}
	if got := MutationKind(9).String(); got != "MutationKind(9)" {
		t.Errorf("String() = %q", got)
	}
}
