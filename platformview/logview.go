package platformview

import "github.com/gogpu/flutterhost/codec"

// LogViewType is the type name the diagnostic view is registered under.
const LogViewType = "log"

// Frame is one Render call seen by a LogView.
type Frame struct {
	Offset    Point
	Size      Size
	Mutations []Mutation
}

// LogView draws nothing. It logs and records what the engine asks of it,
// which makes it useful for checking view placement end to end.
type LogView struct {
	Params   CreateParams
	Frames   []Frame
	Focused  bool
	Pointers []codec.Value
	Disposed bool

	maxFrames int
}

// LogFactory builds LogViews that keep at most maxFrames frames.
func LogFactory(maxFrames int) Factory {
	return func(p CreateParams) (View, bool) {
		return &LogView{Params: p, maxFrames: maxFrames}, true
	}
}

func (v *LogView) Render(offset Point, size Size, mutations []Mutation) {
	slogger().Debug("platformview: log view render",
		"id", v.Params.ID, "offset", offset, "size", size, "mutations", mutations)
	if v.maxFrames <= 0 {
		return
	}
	if len(v.Frames) == v.maxFrames {
		copy(v.Frames, v.Frames[1:])
		v.Frames = v.Frames[:len(v.Frames)-1]
	}
	v.Frames = append(v.Frames, Frame{
		Offset:    offset,
		Size:      size,
		Mutations: append([]Mutation(nil), mutations...),
	})
}

func (v *LogView) ClearFocus() {
	v.Focused = false
}

func (v *LogView) PointerEvent(event codec.Value) {
	slogger().Debug("platformview: log view pointer", "id", v.Params.ID)
	v.Focused = true
	v.Pointers = append(v.Pointers, event)
}

func (v *LogView) Dispose() {
	v.Disposed = true
}
