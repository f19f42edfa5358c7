package platformview

import "fmt"

// Point is a position in physical pixels.
type Point struct {
	X, Y float64
}

// Size is an extent in physical pixels.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RoundedRect is a rectangle with independent elliptical corner radii.
type RoundedRect struct {
	Rect       Rect
	UpperLeft  Size
	UpperRight Size
	LowerRight Size
	LowerLeft  Size
}

// Transformation is a 3x3 projective transform in row-major order.
type Transformation struct {
	ScaleX, SkewX, TransX float64
	SkewY, ScaleY, TransY float64
	Pers0, Pers1, Pers2   float64
}

// Identity returns the identity transform.
func Identity() Transformation {
	return Transformation{ScaleX: 1, ScaleY: 1, Pers2: 1}
}

// Apply maps p through the transform.
func (t Transformation) Apply(p Point) Point {
	w := t.Pers0*p.X + t.Pers1*p.Y + t.Pers2
	if w == 0 {
		w = 1
	}
	return Point{
		X: (t.ScaleX*p.X + t.SkewX*p.Y + t.TransX) / w,
		Y: (t.SkewY*p.X + t.ScaleY*p.Y + t.TransY) / w,
	}
}

// Concat returns t followed by u.
func (t Transformation) Concat(u Transformation) Transformation {
	a := [9]float64{t.ScaleX, t.SkewX, t.TransX, t.SkewY, t.ScaleY, t.TransY, t.Pers0, t.Pers1, t.Pers2}
	b := [9]float64{u.ScaleX, u.SkewX, u.TransX, u.SkewY, u.ScaleY, u.TransY, u.Pers0, u.Pers1, u.Pers2}
	var m [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for k := 0; k < 3; k++ {
				m[r*3+c] += b[r*3+k] * a[k*3+c]
			}
		}
	}
	return Transformation{m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]}
}

// MutationKind tags a Mutation. Values match the engine's enumeration.
type MutationKind int32

const (
	MutationOpacity MutationKind = iota
	MutationClipRect
	MutationClipRoundedRect
	MutationTransformation
)

func (k MutationKind) String() string {
	switch k {
	case MutationOpacity:
		return "Opacity"
	case MutationClipRect:
		return "ClipRect"
	case MutationClipRoundedRect:
		return "ClipRoundedRect"
	case MutationTransformation:
		return "Transformation"
	default:
		return fmt.Sprintf("MutationKind(%d)", int32(k))
	}
}

// Mutation is one entry of a platform view's mutation stack. Only the field
// selected by Kind is meaningful. Stacks are ordered outermost first.
type Mutation struct {
	Kind            MutationKind
	Opacity         float64
	ClipRect        Rect
	ClipRoundedRect RoundedRect
	Transformation  Transformation
}

// Opacity returns an opacity mutation.
func Opacity(alpha float64) Mutation {
	return Mutation{Kind: MutationOpacity, Opacity: alpha}
}

// ClipRect returns a rectangular clip mutation.
func ClipRect(r Rect) Mutation {
	return Mutation{Kind: MutationClipRect, ClipRect: r}
}

// ClipRoundedRect returns a rounded clip mutation.
func ClipRoundedRect(r RoundedRect) Mutation {
	return Mutation{Kind: MutationClipRoundedRect, ClipRoundedRect: r}
}

// Transform returns a transformation mutation.
func Transform(t Transformation) Mutation {
	return Mutation{Kind: MutationTransformation, Transformation: t}
}

func (m Mutation) String() string {
	switch m.Kind {
	case MutationOpacity:
		return fmt.Sprintf("Opacity(%g)", m.Opacity)
	case MutationClipRect:
		return fmt.Sprintf("ClipRect(%v)", m.ClipRect)
	case MutationClipRoundedRect:
		return fmt.Sprintf("ClipRoundedRect(%v)", m.ClipRoundedRect)
	case MutationTransformation:
		return fmt.Sprintf("Transformation(%v)", m.Transformation)
	default:
		return m.Kind.String()
	}
}

// Flatten folds a stack into the total opacity and transform it applies.
// Clips are not folded.
func Flatten(stack []Mutation) (opacity float64, t Transformation) {
	opacity, t = 1, Identity()
	for _, m := range stack {
		switch m.Kind {
		case MutationOpacity:
			opacity *= m.Opacity
		case MutationTransformation:
			t = m.Transformation.Concat(t)
		}
	}
	return opacity, t
}
