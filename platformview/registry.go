package platformview

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flutterhost/codec"
)

// Channel is the platform channel carrying view lifecycle calls. It uses
// codec.StandardMethodCodec.
const Channel = "flutter/platform_views"

// ErrBadArguments reports a platform view call with malformed arguments.
var ErrBadArguments = errors.New("platformview: bad arguments")

// View is a natively rendered embed placed by the engine.
type View interface {
	// Render is called once per frame the view appears in, with the
	// layer's placement and its mutation stack.
	Render(offset Point, size Size, mutations []Mutation)
	ClearFocus()
	PointerEvent(event codec.Value)
}

// Disposer is implemented by views that hold resources.
type Disposer interface {
	Dispose()
}

// CreateParams describes a view the engine asked for.
type CreateParams struct {
	ID       int64
	ViewType string
	// Size is nil when the engine did not declare one.
	Size *Size
	// Params holds the creation parameters encoded by the Dart side.
	Params codec.Value
}

// Factory builds a view. Returning false refuses the creation.
type Factory func(CreateParams) (View, bool)

type entry struct {
	params CreateParams
	view   View
}

// Registry maps view type names to factories and view ids to live views.
// It is owned by the UI thread.
type Registry struct {
	factories *gpucontext.Registry[Factory]
	views     map[int64]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: gpucontext.NewRegistry[Factory](),
		views:     make(map[int64]entry),
	}
}

// Register installs the factory for viewType, replacing any previous one.
func (r *Registry) Register(viewType string, f Factory) {
	r.factories.Register(viewType, func() Factory { return f })
}

// Unregister removes the factory for viewType. Live views are kept.
func (r *Registry) Unregister(viewType string) {
	r.factories.Unregister(viewType)
}

// Types returns the registered view type names.
func (r *Registry) Types() []string {
	names := r.factories.Available()
	sort.Strings(names)
	return names
}

// HandleCreate runs the factory registered for p.ViewType. It reports false
// without side effects when the type is unknown, the id is taken or the
// factory refuses.
func (r *Registry) HandleCreate(p CreateParams) bool {
	if _, ok := r.views[p.ID]; ok {
		slogger().Warn("platformview: id already in use", "id", p.ID, "type", p.ViewType)
		return false
	}
	f := r.factories.Get(p.ViewType)
	if f == nil {
		slogger().Warn("platformview: unknown view type", "id", p.ID, "type", p.ViewType)
		return false
	}
	v, ok := f(p)
	if !ok || v == nil {
		slogger().Debug("platformview: factory refused", "id", p.ID, "type", p.ViewType)
		return false
	}
	r.views[p.ID] = entry{params: p, view: v}
	slogger().Debug("platformview: created", "id", p.ID, "type", p.ViewType)
	return true
}

// HandleDispose removes the view with id. Absent ids are ignored.
func (r *Registry) HandleDispose(id int64) {
	e, ok := r.views[id]
	if !ok {
		return
	}
	delete(r.views, id)
	if d, ok := e.view.(Disposer); ok {
		d.Dispose()
	}
	slogger().Debug("platformview: disposed", "id", id)
}

// DisposeAll removes every live view.
func (r *Registry) DisposeAll() {
	for id := range r.views {
		r.HandleDispose(id)
	}
}

// Len returns the number of live views.
func (r *Registry) Len() int { return len(r.views) }

// View returns the live view with id.
func (r *Registry) View(id int64) (View, bool) {
	e, ok := r.views[id]
	return e.view, ok
}

// Render forwards a frame placement to the view with id. An unknown id
// means the engine and host disagree about live views; it is logged only.
func (r *Registry) Render(id int64, offset Point, size Size, mutations []Mutation) {
	e, ok := r.views[id]
	if !ok {
		slogger().Warn("platformview: render for unknown view", "id", id)
		return
	}
	e.view.Render(offset, size, mutations)
}

// ClearFocus asks the view with id to drop focus.
func (r *Registry) ClearFocus(id int64) bool {
	e, ok := r.views[id]
	if ok {
		e.view.ClearFocus()
	}
	return ok
}

// DispatchPointer forwards a pointer event to the view with id.
func (r *Registry) DispatchPointer(id int64, event codec.Value) bool {
	e, ok := r.views[id]
	if ok {
		e.view.PointerEvent(event)
	}
	return ok
}

// HandleMethodCall serves a call on Channel.
func (r *Registry) HandleMethodCall(call codec.MethodCall) (codec.Value, error) {
	switch call.Method {
	case "create":
		p, err := parseCreate(call.Args)
		if err != nil {
			return nil, err
		}
		return codec.Bool(r.HandleCreate(p)), nil
	case "dispose":
		id, err := viewID(call.Args)
		if err != nil {
			return nil, err
		}
		r.HandleDispose(id)
		return codec.Bool(true), nil
	case "clearFocus":
		id, err := viewID(call.Args)
		if err != nil {
			return nil, err
		}
		if !r.ClearFocus(id) {
			return nil, &codec.MethodError{Code: "unknown_view", Message: fmt.Sprintf("no view with id %d", id)}
		}
		return codec.Nil{}, nil
	case "pointerEvent":
		m, ok := codec.AsMap(call.Args)
		if !ok {
			return nil, fmt.Errorf("%w: pointerEvent expects a map", ErrBadArguments)
		}
		id, err := viewID(m)
		if err != nil {
			return nil, err
		}
		event, _ := m.Get("event")
		if !r.DispatchPointer(id, event) {
			return nil, &codec.MethodError{Code: "unknown_view", Message: fmt.Sprintf("no view with id %d", id)}
		}
		return codec.Nil{}, nil
	default:
		return nil, codec.ErrMethodNotImplemented
	}
}

func parseCreate(args codec.Value) (CreateParams, error) {
	m, ok := codec.AsMap(args)
	if !ok {
		return CreateParams{}, fmt.Errorf("%w: create expects a map", ErrBadArguments)
	}
	id, err := viewID(m)
	if err != nil {
		return CreateParams{}, err
	}
	p := CreateParams{ID: id, Params: codec.Nil{}}
	raw, _ := m.Get("viewType")
	if p.ViewType, ok = codec.AsString(raw); !ok {
		return CreateParams{}, fmt.Errorf("%w: create without viewType", ErrBadArguments)
	}
	if s, ok := m.Get("size"); ok {
		if sm, ok := codec.AsMap(s); ok {
			p.Size = sizeOf(sm)
		}
	} else if _, ok := m.Get("width"); ok {
		p.Size = sizeOf(m)
	}
	if params, ok := m.Get("params"); ok {
		p.Params = params
	}
	return p, nil
}

func sizeOf(m codec.Map) *Size {
	w, _ := m.Get("width")
	h, _ := m.Get("height")
	var s Size
	s.Width, _ = codec.AsFloat(w)
	s.Height, _ = codec.AsFloat(h)
	return &s
}

// viewID accepts a bare integer or a map with an "id" key.
func viewID(v codec.Value) (int64, error) {
	if m, ok := codec.AsMap(v); ok {
		v, _ = m.Get("id")
	}
	id, ok := codec.AsInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: missing view id", ErrBadArguments)
	}
	return id, nil
}
